package capture

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
)

// Colorize maps depths (meters after scale) in [near, far] onto a jet
// colormap, near blue to far red. Missing depth is black.
func Colorize(d *DepthImage, scale, near, far float32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	span := far - near
	if span <= 0 {
		span = 1
	}
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			raw := d.At(x, y)
			if raw == 0 {
				img.SetRGBA(x, y, color.RGBA{A: 0xff})
				continue
			}
			img.SetRGBA(x, y, Jet((float32(raw)*scale-near)/span))
		}
	}
	return img
}

// Jet returns the jet colormap color for t in [0, 1]. t is clamped.
func Jet(t float32) color.RGBA {
	t = math32.Max(0, math32.Min(1, t))
	channel := func(offset float32) uint8 {
		v := 1.5 - math32.Abs(4*t-offset)
		v = math32.Max(0, math32.Min(1, v))
		return uint8(v*255 + 0.5)
	}
	return color.RGBA{R: channel(3), G: channel(2), B: channel(1), A: 0xff}
}
