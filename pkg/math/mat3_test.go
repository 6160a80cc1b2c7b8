package math

import (
	gomath "math"
	"testing"
)

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func vecNear(a, b Vec3, eps float32) bool {
	return abs(a.X-b.X) < eps && abs(a.Y-b.Y) < eps && abs(a.Z-b.Z) < eps
}

func TestMat3Identity(t *testing.T) {
	m := Mat3Identity()
	v := Vec3{1, 2, 3}
	if got := m.MulVec(v); got != v {
		t.Errorf("Identity.MulVec: got %v, want %v", got, v)
	}
}

func TestRotationX(t *testing.T) {
	m := RotationX(float32(gomath.Pi / 2))
	got := m.MulVec(Vec3{0, 1, 0})
	want := Vec3{0, 0, 1}
	if !vecNear(got, want, 1e-6) {
		t.Errorf("RotationX(90).MulVec(Y): got %v, want %v", got, want)
	}
}

func TestRotationY(t *testing.T) {
	m := RotationY(float32(gomath.Pi / 2))
	got := m.MulVec(Vec3{0, 0, 1})
	want := Vec3{1, 0, 0}
	if !vecNear(got, want, 1e-6) {
		t.Errorf("RotationY(90).MulVec(Z): got %v, want %v", got, want)
	}
}

func TestMat3Mul(t *testing.T) {
	a := RotationY(0.3)
	b := RotationX(-0.7)
	v := Vec3{0.2, -1.5, 4}

	got := a.Mul(b).MulVec(v)
	want := a.MulVec(b.MulVec(v))
	if !vecNear(got, want, 1e-5) {
		t.Errorf("(a*b)*v: got %v, want %v", got, want)
	}
}

func TestMat3IsOrthonormal(t *testing.T) {
	angles := []float32{0, 0.1, -1.3, 3.5, 100}
	for _, pitch := range angles {
		for _, yaw := range angles {
			r := RotationY(yaw).Mul(RotationX(pitch))
			if !r.IsOrthonormal(1e-5) {
				t.Errorf("Ry(%v)*Rx(%v) is not orthonormal", yaw, pitch)
			}
		}
	}

	skew := Mat3{1, 1, 0, 0, 1, 0, 0, 0, 1}
	if skew.IsOrthonormal(1e-5) {
		t.Error("shear matrix reported orthonormal")
	}
}

func TestMat3TransposeAt(t *testing.T) {
	m := Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}
	tr := m.Transpose()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if m.At(r, c) != tr.At(c, r) {
				t.Errorf("At(%d,%d) = %v, transposed = %v", r, c, m.At(r, c), tr.At(c, r))
			}
		}
	}
	if got := m.Row(1); got != (Vec3{4, 5, 6}) {
		t.Errorf("Row(1): got %v, want {4 5 6}", got)
	}
}
