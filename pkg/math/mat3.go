package math

import "github.com/chewxy/math32"

// Mat3 is a row-major 3x3 matrix: element (r, c) is stored at index r*3+c.
type Mat3 [9]float32

// Mat3Identity returns the identity matrix.
func Mat3Identity() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// RotationX returns a rotation of angle radians about the X axis.
func RotationX(angle float32) Mat3 {
	s, c := math32.Sincos(angle)
	return Mat3{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

// RotationY returns a rotation of angle radians about the Y axis.
func RotationY(angle float32) Mat3 {
	s, c := math32.Sincos(angle)
	return Mat3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

// At returns the element at row r, column c.
func (m Mat3) At(r, c int) float32 {
	return m[r*3+c]
}

// Mul returns m * other.
func (m Mat3) Mul(other Mat3) Mat3 {
	var result Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			var sum float32
			for k := 0; k < 3; k++ {
				sum += m[r*3+k] * other[k*3+c]
			}
			result[r*3+c] = sum
		}
	}
	return result
}

// MulVec returns m * v with v as a column vector.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Row returns row r as a vector.
func (m Mat3) Row(r int) Vec3 {
	return Vec3{m[r*3], m[r*3+1], m[r*3+2]}
}

// IsOrthonormal reports whether m * m^T is the identity within eps.
func (m Mat3) IsOrthonormal(eps float32) bool {
	p := m.Mul(m.Transpose())
	id := Mat3Identity()
	for i := range p {
		if math32.Abs(p[i]-id[i]) > eps {
			return false
		}
	}
	return true
}
