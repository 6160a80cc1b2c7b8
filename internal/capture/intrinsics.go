package capture

import (
	"fmt"

	"github.com/Faultbox/depthview/pkg/math"
)

// Intrinsics is a pinhole model of a depth stream.
type Intrinsics struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Fx     float32 `yaml:"fx"`
	Fy     float32 `yaml:"fy"`
	Cx     float32 `yaml:"cx"`
	Cy     float32 `yaml:"cy"`
}

// DefaultIntrinsics returns a model for a width x height stream with a
// horizontal focal length equal to the width.
func DefaultIntrinsics(width, height int) Intrinsics {
	return Intrinsics{
		Width:  width,
		Height: height,
		Fx:     float32(width),
		Fy:     float32(width),
		Cx:     float32(width) / 2,
		Cy:     float32(height) / 2,
	}
}

// Validate checks that the model can deproject.
func (in Intrinsics) Validate() error {
	if in.Width < 1 || in.Height < 1 {
		return fmt.Errorf("intrinsics: invalid size %dx%d", in.Width, in.Height)
	}
	if in.Fx == 0 || in.Fy == 0 {
		return fmt.Errorf("intrinsics: zero focal length")
	}
	return nil
}

// Size returns the stream resolution.
func (in Intrinsics) Size() (width, height int) {
	return in.Width, in.Height
}

// Deproject returns the camera-space point seen at pixel (px, py) at the
// given depth.
func (in Intrinsics) Deproject(px, py, depth float32) math.Vec3 {
	return math.Vec3{
		X: (px - in.Cx) / in.Fx * depth,
		Y: (py - in.Cy) / in.Fy * depth,
		Z: depth,
	}
}

// Project returns the pixel a camera-space point falls on.
func (in Intrinsics) Project(p math.Vec3) (px, py float32) {
	return p.X/p.Z*in.Fx + in.Cx, p.Y/p.Z*in.Fy + in.Cy
}

// Scaled returns the intrinsics of the stream downsampled by factor. The
// principal point keeps its position relative to pixel centers.
func (in Intrinsics) Scaled(factor int) Intrinsics {
	if factor <= 1 {
		return in
	}
	f := float32(factor)
	return Intrinsics{
		Width:  in.Width / factor,
		Height: in.Height / factor,
		Fx:     in.Fx / f,
		Fy:     in.Fy / f,
		Cx:     (in.Cx+0.5)/f - 0.5,
		Cy:     (in.Cy+0.5)/f - 0.5,
	}
}
