package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec2IsFinite(t *testing.T) {
	tests := []struct {
		name string
		v    Vec2
		want bool
	}{
		{"finite", Vec2{1, -2}, true},
		{"nan x", Vec2{math32.NaN(), 0}, false},
		{"nan y", Vec2{0, math32.NaN()}, false},
		{"inf", Vec2{math32.Inf(1), 0}, false},
		{"neg inf", Vec2{0, math32.Inf(-1)}, false},
		{"NaN2", NaN2(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.want {
				t.Errorf("IsFinite(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3MulMat3(t *testing.T) {
	m := Mat3{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}
	got := Vec3{1, 0, 0}.MulMat3(m)
	if got != (Vec3{1, 2, 3}) {
		t.Errorf("row 0: got %v, want %v", got, Vec3{1, 2, 3})
	}
	got = Vec3{0, 0, 1}.MulMat3(m)
	if got != (Vec3{7, 8, 9}) {
		t.Errorf("row 2: got %v, want %v", got, Vec3{7, 8, 9})
	}
	// v * m equals m^T * v
	v := Vec3{0.5, -1, 2}
	if a, b := v.MulMat3(m), m.Transpose().MulVec(v); a != b {
		t.Errorf("row product %v != transposed column product %v", a, b)
	}
}
