// Package transform maps camera-space points into view space and projects
// them onto an output raster.
package transform

import (
	"github.com/Faultbox/depthview/internal/engine/camera"
	"github.com/Faultbox/depthview/pkg/math"
)

// NearClip is the smallest view-space depth that still projects.
const NearClip float32 = 0.03

// View is the orbit view transform of one camera pose.
type View struct {
	rotation    math.Mat3
	pivot       math.Vec3
	translation math.Vec3
}

// NewView derives the view transform from a pose.
func NewView(p camera.Pose) View {
	return View{
		rotation:    p.Rotation(),
		pivot:       p.Pivot(),
		translation: p.Translation,
	}
}

// Rotation returns the rotation used by the view.
func (v View) Rotation() math.Mat3 {
	return v.rotation
}

// Pivot returns the orbit pivot used by the view.
func (v View) Pivot() math.Vec3 {
	return v.pivot
}

// Apply returns (p - pivot) * rotation + pivot - translation, with p taken
// as a row vector.
func (v View) Apply(p math.Vec3) math.Vec3 {
	return p.Sub(v.pivot).MulMat3(v.rotation).Add(v.pivot).Sub(v.translation)
}

// ApplyAll transforms src into dst and returns dst. dst is grown when it is
// shorter than src.
func (v View) ApplyAll(dst, src []math.Vec3) []math.Vec3 {
	if cap(dst) < len(src) {
		dst = make([]math.Vec3, len(src))
	}
	dst = dst[:len(src)]
	for i, p := range src {
		dst[i] = v.Apply(p)
	}
	return dst
}

// Projector performs the perspective projection onto a width x height raster.
type Projector struct {
	scale  math.Vec2
	center math.Vec2
}

// NewProjector creates a projector for the given output size.
// The horizontal scale is derived from the aspect ratio so pixels stay square.
func NewProjector(width, height int) Projector {
	w, h := float32(width), float32(height)
	aspect := h / w
	return Projector{
		scale:  math.Vec2{X: w * aspect, Y: h},
		center: math.Vec2{X: w / 2, Y: h / 2},
	}
}

// Project divides x and y by z and maps the result to pixel coordinates.
// Points closer than NearClip, including those behind the camera, project
// to NaN. A zero or negative z never panics.
func (pr Projector) Project(p math.Vec3) math.Vec2 {
	if p.Z < NearClip {
		return math.NaN2()
	}
	return math.Vec2{
		X: p.X/p.Z*pr.scale.X + pr.center.X,
		Y: p.Y/p.Z*pr.scale.Y + pr.center.Y,
	}
}

// ProjectAll projects src into dst and returns dst.
func (pr Projector) ProjectAll(dst []math.Vec2, src []math.Vec3) []math.Vec2 {
	if cap(dst) < len(src) {
		dst = make([]math.Vec2, len(src))
	}
	dst = dst[:len(src)]
	for i, p := range src {
		dst[i] = pr.Project(p)
	}
	return dst
}

// Project is a convenience wrapper that projects a batch onto a raster.
func Project(src []math.Vec3, width, height int) []math.Vec2 {
	return NewProjector(width, height).ProjectAll(nil, src)
}

// ViewProject runs a single point through view and projection.
func ViewProject(v View, pr Projector, p math.Vec3) math.Vec2 {
	return pr.Project(v.Apply(p))
}
