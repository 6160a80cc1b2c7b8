// Package texture provides the color source sampled by the point-cloud
// rasterizer.
package texture

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/image/draw"

	// BMP is a common export format of depth-camera tools.
	_ "golang.org/x/image/bmp"
)

// Texture is an RGBA pixel grid addressed by normalized coordinates.
type Texture struct {
	img *image.RGBA
}

// New wraps img, converting it to RGBA with a zero origin when needed.
func New(img image.Image) *Texture {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return &Texture{img: rgba}
	}
	return &Texture{img: ImageToRGBA(img)}
}

// Solid returns a width x height texture filled with c.
func Solid(width, height int, c color.RGBA) *Texture {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
	return &Texture{img: img}
}

// Load reads an image file (PNG, JPEG or BMP) as a texture.
func Load(path string) (*Texture, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading texture %s: %w", path, err)
	}
	return New(img), nil
}

// ImageToRGBA converts any image.Image to *image.RGBA with its origin at (0,0).
func ImageToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	return rgba
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int {
	return t.img.Rect.Dx()
}

// Height returns the texture height in pixels.
func (t *Texture) Height() int {
	return t.img.Rect.Dy()
}

// Image returns the underlying pixels.
func (t *Texture) Image() *image.RGBA {
	return t.img
}

// Texel maps a normalized coordinate to a pixel index. The coordinate is
// relative to the top-left pixel corner: it is scaled by the texture size,
// shifted by half a pixel, truncated and clamped into the texture. Nothing
// is ever rejected, edge coordinates land on the nearest border pixel.
func (t *Texture) Texel(u, v float32) (row, col int) {
	col = clampIndex(u*float32(t.Width())+0.5, t.Width())
	row = clampIndex(v*float32(t.Height())+0.5, t.Height())
	return row, col
}

// Sample returns the color at the texel for (u, v).
func (t *Texture) Sample(u, v float32) color.RGBA {
	row, col := t.Texel(u, v)
	return t.img.RGBAAt(col, row)
}

// At returns the color at (row, col).
func (t *Texture) At(row, col int) color.RGBA {
	return t.img.RGBAAt(col, row)
}

// clampIndex truncates f and clamps it to [0, n-1]. NaN maps to 0.
func clampIndex(f float32, n int) int {
	if !(f >= 0) {
		return 0
	}
	if f >= float32(n) {
		return n - 1
	}
	return int(f)
}
