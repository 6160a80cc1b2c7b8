// Package capture supplies per-frame point clouds to the viewer: vertices,
// index-paired texture coordinates, stream intrinsics and the color and
// colorized depth images the coordinates address.
package capture

import (
	"context"
	"errors"
	"time"

	"github.com/Faultbox/depthview/internal/engine/texture"
	"github.com/Faultbox/depthview/pkg/math"
)

var (
	// ErrNoDepth is returned when a source has no usable depth data.
	ErrNoDepth = errors.New("capture: no depth data")
	// ErrFieldMissing is returned when a point cloud file lacks x, y or z.
	ErrFieldMissing = errors.New("capture: required field missing")
)

// Frame is one acquisition result.
type Frame struct {
	// Vertices are camera-space points; TexCoords[i] belongs to Vertices[i].
	Vertices  []math.Vec3
	TexCoords []math.Vec2

	// Intrinsics of the (decimated) depth stream the cloud was built from.
	Intrinsics Intrinsics
	// Unorganized is set for clouds without a sensor raster. Their
	// Intrinsics describe an N x 1 strip, not a camera.
	Unorganized bool

	// Color is the color image, nil when the source has none.
	Color *texture.Texture
	// DepthColor is the colorized depth image.
	DepthColor *texture.Texture

	Index     int
	Timestamp time.Time
}

// Len returns the number of index-paired points.
func (f *Frame) Len() int {
	return min(len(f.Vertices), len(f.TexCoords))
}

// ColorSource returns the texture the rasterizer samples: the color image
// when useColor is set and available, otherwise the colorized depth.
func (f *Frame) ColorSource(useColor bool) *texture.Texture {
	if useColor && f.Color != nil {
		return f.Color
	}
	return f.DepthColor
}

// Source produces frames.
type Source interface {
	// Next returns the next frame. Sources without new data return the last
	// frame again.
	Next(ctx context.Context) (*Frame, error)

	// SetDecimation selects the filter strength: the native resolution is
	// reduced by 2^level in each dimension.
	SetDecimation(level int)

	Close() error
}
