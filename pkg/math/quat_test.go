package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
	if m := q.ToMat3(); m != Mat3Identity() {
		t.Errorf("Identity.ToMat3: got %v", m)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}

	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero quaternion should normalize to identity, got %v", got)
	}
}

func TestQuatToMat3MatchesRotation(t *testing.T) {
	angle := float32(0.6)

	qy := QuatFromAxisAngle(Vec3{0, 1, 0}, angle)
	if !matNear(qy.ToMat3(), RotationY(angle), 1e-5) {
		t.Errorf("Y quaternion: got %v, want %v", qy.ToMat3(), RotationY(angle))
	}

	qx := QuatFromAxisAngle(Vec3{1, 0, 0}, angle)
	if !matNear(qx.ToMat3(), RotationX(angle), 1e-5) {
		t.Errorf("X quaternion: got %v, want %v", qx.ToMat3(), RotationX(angle))
	}
}

func TestQuatMul(t *testing.T) {
	qy := QuatFromAxisAngle(Vec3{0, 1, 0}, 0.4)
	qx := QuatFromAxisAngle(Vec3{1, 0, 0}, -0.2)
	v := Vec3{1, 2, 3}

	got := qy.Mul(qx).Rotate(v)
	want := qy.Rotate(qx.Rotate(v))
	if !vecNear(got, want, 1e-5) {
		t.Errorf("combined rotation: got %v, want %v", got, want)
	}
}

func matNear(a, b Mat3, eps float32) bool {
	for i := range a {
		if abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
