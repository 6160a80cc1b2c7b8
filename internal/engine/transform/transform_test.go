package transform

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/depthview/internal/engine/camera"
	"github.com/Faultbox/depthview/pkg/math"
)

func TestProjectNearClip(t *testing.T) {
	pr := NewProjector(640, 480)

	tests := map[string]math.Vec3{
		"just below near":   {X: 0, Y: 0, Z: 0.0299},
		"zero depth":        {X: 1, Y: 1, Z: 0},
		"behind camera":     {X: 0.1, Y: -0.2, Z: -3},
		"huge xy":           {X: 1e9, Y: -1e9, Z: 0.01},
		"negative zero":     {X: 0, Y: 0, Z: float32(math32.Copysign(0, -1))},
		"tiny xy near zero": {X: 1e-9, Y: 1e-9, Z: 1e-7},
	}
	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			got := pr.Project(p)
			assert.False(t, got.IsFinite(), "projection of %v should be non-finite, got %v", p, got)
			assert.True(t, math32.IsNaN(got.X) && math32.IsNaN(got.Y))
		})
	}
}

func TestProjectClosedForm(t *testing.T) {
	tests := map[string]struct {
		w, h int
		p    math.Vec3
	}{
		"at near plane": {w: 100, h: 100, p: math.Vec3{X: 0.01, Y: -0.01, Z: NearClip}},
		"wide raster":   {w: 640, h: 480, p: math.Vec3{X: 0.5, Y: 0.25, Z: 2}},
		"tall raster":   {w: 200, h: 600, p: math.Vec3{X: -1, Y: 3, Z: 7.5}},
		"on axis":       {w: 321, h: 123, p: math.Vec3{Z: 10}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := NewProjector(tt.w, tt.h).Project(tt.p)
			w, h := float32(tt.w), float32(tt.h)
			wantX := tt.p.X/tt.p.Z*(w*(h/w)) + w/2
			wantY := tt.p.Y/tt.p.Z*h + h/2
			assert.InDelta(t, wantX, got.X, 1e-3)
			assert.InDelta(t, wantY, got.Y, 1e-3)
		})
	}
}

func TestProjectAll(t *testing.T) {
	src := []math.Vec3{{Z: 1}, {Z: 0}, {X: 1, Z: 2}}
	got := Project(src, 10, 10)
	require.Len(t, got, 3)
	assert.Equal(t, math.Vec2{X: 5, Y: 5}, got[0])
	assert.False(t, got[1].IsFinite())
	assert.InDelta(t, 10, got[2].X, 1e-5)

	// dst with enough capacity is reused
	dst := make([]math.Vec2, 0, 8)
	out := NewProjector(10, 10).ProjectAll(dst, src)
	assert.Equal(t, 8, cap(out))
}

func TestViewIdentity(t *testing.T) {
	// pitch = yaw = 0 and no translation: the pivot terms cancel
	pose := camera.Pose{Distance: 2}
	v := NewView(pose)

	points := []math.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: -2, Z: 3},
		{X: -0.5, Y: 0.25, Z: 100},
	}
	for _, p := range points {
		got := v.Apply(p)
		assert.InDelta(t, p.X, got.X, 1e-5)
		assert.InDelta(t, p.Y, got.Y, 1e-5)
		assert.InDelta(t, p.Z, got.Z, 1e-5)
	}
}

func TestViewTranslationOnly(t *testing.T) {
	pose := camera.Pose{Translation: math.Vec3{X: 1, Y: 2, Z: -1}, Distance: 2}
	got := NewView(pose).Apply(math.Vec3{X: 0, Y: 0, Z: 5})
	assert.Equal(t, math.Vec3{X: -1, Y: -2, Z: 6}, got)
}

func TestViewPivotIsFixed(t *testing.T) {
	pose := camera.DefaultPose()
	pose.Pitch, pose.Yaw = 0.7, -1.9
	v := NewView(pose)

	// the pivot only moves by the translation, independent of rotation
	got := v.Apply(pose.Pivot())
	want := pose.Pivot().Sub(pose.Translation)
	assert.InDelta(t, want.X, got.X, 1e-5)
	assert.InDelta(t, want.Y, got.Y, 1e-5)
	assert.InDelta(t, want.Z, got.Z, 1e-5)
}

func TestViewPreservesDistanceToPivot(t *testing.T) {
	pose := camera.DefaultPose()
	v := NewView(pose)
	p := math.Vec3{X: 0.3, Y: -0.4, Z: 2.5}

	before := p.Distance(pose.Pivot())
	after := v.Apply(p).Add(pose.Translation).Distance(pose.Pivot())
	assert.InDelta(t, before, after, 1e-5)
}

func TestViewRowVectorConvention(t *testing.T) {
	pose := camera.Pose{Yaw: math32.Pi / 2}
	v := NewView(pose)

	// Ry(90) maps +Z to +X for column vectors; the row product is the inverse
	got := v.Apply(math.Vec3{X: 1})
	assert.InDelta(t, 0, got.X, 1e-5)
	assert.InDelta(t, 1, got.Z, 1e-5)
}

func TestApplyAllReusesBuffer(t *testing.T) {
	v := NewView(camera.DefaultPose())
	src := []math.Vec3{{X: 1}, {Y: 1}}
	dst := make([]math.Vec3, 5)
	out := v.ApplyAll(dst, src)
	require.Len(t, out, 2)
	assert.Equal(t, v.Apply(src[1]), out[1])
}
