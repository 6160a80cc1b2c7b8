package capture

import (
	"image"
	"image/color"
	"slices"

	"github.com/Faultbox/depthview/pkg/math"
)

// DepthImage is a row-major grid of raw depth units. Zero means no data.
type DepthImage struct {
	Width  int
	Height int
	Data   []uint16
}

// NewDepthImage allocates an empty depth grid.
func NewDepthImage(width, height int) *DepthImage {
	return &DepthImage{Width: width, Height: height, Data: make([]uint16, width*height)}
}

// DepthFromImage reads depth units from a 16-bit grayscale image. Other
// image types are converted through the 16-bit gray model.
func DepthFromImage(img image.Image) (*DepthImage, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrNoDepth
	}
	d := NewDepthImage(b.Dx(), b.Dy())

	if g16, ok := img.(*image.Gray16); ok {
		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				d.Data[y*d.Width+x] = g16.Gray16At(b.Min.X+x, b.Min.Y+y).Y
			}
		}
		return d, nil
	}

	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			c := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			d.Data[y*d.Width+x] = c.Y
		}
	}
	return d, nil
}

// At returns the depth at (x, y).
func (d *DepthImage) At(x, y int) uint16 {
	return d.Data[y*d.Width+x]
}

// Set stores the depth at (x, y).
func (d *DepthImage) Set(x, y int, v uint16) {
	d.Data[y*d.Width+x] = v
}

// Decimate downsamples d by 2^level. Each output pixel combines the non-zero
// samples of its block: the median for 2x2 blocks, the mean for larger ones.
// Blocks without data stay zero.
func Decimate(d *DepthImage, level int) *DepthImage {
	if level <= 0 {
		return d
	}
	factor := 1 << level
	out := NewDepthImage(d.Width/factor, d.Height/factor)
	samples := make([]uint16, 0, factor*factor)

	for oy := 0; oy < out.Height; oy++ {
		for ox := 0; ox < out.Width; ox++ {
			samples = samples[:0]
			for y := oy * factor; y < (oy+1)*factor; y++ {
				for x := ox * factor; x < (ox+1)*factor; x++ {
					if v := d.At(x, y); v != 0 {
						samples = append(samples, v)
					}
				}
			}
			out.Set(ox, oy, combine(samples, factor))
		}
	}
	return out
}

func combine(samples []uint16, factor int) uint16 {
	if len(samples) == 0 {
		return 0
	}
	if factor <= 2 {
		slices.Sort(samples)
		return samples[len(samples)/2]
	}
	var sum int
	for _, v := range samples {
		sum += int(v)
	}
	return uint16(sum / len(samples))
}

// Deproject builds the point cloud of d: one vertex per pixel, with texture
// coordinates at the pixel corners of an image aligned with the depth stream.
// scale converts depth units to meters. Pixels without depth produce the
// camera-space origin. The view moves the origin in front of the camera, so
// those vertices are still drawn, all at one spot.
func Deproject(d *DepthImage, in Intrinsics, scale float32) ([]math.Vec3, []math.Vec2) {
	n := d.Width * d.Height
	verts := make([]math.Vec3, n)
	tcs := make([]math.Vec2, n)

	fw, fh := float32(d.Width), float32(d.Height)
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			i := y*d.Width + x
			tcs[i] = math.Vec2{X: float32(x) / fw, Y: float32(y) / fh}
			raw := d.Data[i]
			if raw == 0 {
				continue
			}
			verts[i] = in.Deproject(float32(x), float32(y), float32(raw)*scale)
		}
	}
	return verts, tcs
}
