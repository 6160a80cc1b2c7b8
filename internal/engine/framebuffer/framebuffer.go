// Package framebuffer provides the CPU color buffer the viewer composes each
// frame into.
package framebuffer

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Black is the clear color.
var Black = color.RGBA{A: 0xff}

// Buffer is an RGBA raster addressed by (row, column).
type Buffer struct {
	img *image.RGBA

	// resample target reused by CompositeNonBlack
	scratch *image.RGBA
}

// New creates a buffer of the given size, cleared to black.
// Non-positive dimensions are raised to 1.
func New(width, height int) *Buffer {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	b := &Buffer{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	b.Clear()
	return b
}

// Width returns the number of columns.
func (b *Buffer) Width() int {
	return b.img.Rect.Dx()
}

// Height returns the number of rows.
func (b *Buffer) Height() int {
	return b.img.Rect.Dy()
}

// Size returns the buffer dimensions.
func (b *Buffer) Size() (width, height int) {
	return b.Width(), b.Height()
}

// SameSize reports whether the buffer has the given dimensions.
func (b *Buffer) SameSize(width, height int) bool {
	return b.Width() == width && b.Height() == height
}

// Image exposes the underlying image for drawing and encoding.
func (b *Buffer) Image() *image.RGBA {
	return b.img
}

// Pix returns the raw RGBA bytes, rows top to bottom.
func (b *Buffer) Pix() []byte {
	return b.img.Pix
}

// Clear fills the buffer with opaque black.
func (b *Buffer) Clear() {
	pix := b.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = 0, 0, 0, 0xff
	}
}

// Resize changes the buffer dimensions if they differ and clears it.
func (b *Buffer) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if b.SameSize(width, height) {
		return
	}
	b.img = image.NewRGBA(image.Rect(0, 0, width, height))
	b.Clear()
}

// InBounds reports whether (row, col) addresses a pixel.
func (b *Buffer) InBounds(row, col int) bool {
	return row >= 0 && row < b.Height() && col >= 0 && col < b.Width()
}

// Set writes c at (row, col). Out-of-range writes are ignored.
func (b *Buffer) Set(row, col int, c color.RGBA) {
	if !b.InBounds(row, col) {
		return
	}
	i := b.img.PixOffset(col, row)
	b.img.Pix[i] = c.R
	b.img.Pix[i+1] = c.G
	b.img.Pix[i+2] = c.B
	b.img.Pix[i+3] = c.A
}

// At returns the color at (row, col), or transparent black outside the buffer.
func (b *Buffer) At(row, col int) color.RGBA {
	if !b.InBounds(row, col) {
		return color.RGBA{}
	}
	return b.img.RGBAAt(col, row)
}

// CompositeNonBlack resamples src to this buffer's size with nearest
// neighbor filtering, then copies every resampled pixel whose RGB is not
// black. Black source pixels leave the destination untouched, so anything
// already drawn survives under the background of src.
func (b *Buffer) CompositeNonBlack(src *Buffer) {
	if b.scratch == nil || b.scratch.Rect != b.img.Rect {
		b.scratch = image.NewRGBA(b.img.Rect)
	}
	draw.NearestNeighbor.Scale(b.scratch, b.scratch.Rect, src.img, src.img.Rect, draw.Src, nil)

	dst, tmp := b.img.Pix, b.scratch.Pix
	for i := 0; i < len(tmp); i += 4 {
		if tmp[i] == 0 && tmp[i+1] == 0 && tmp[i+2] == 0 {
			continue
		}
		copy(dst[i:i+4], tmp[i:i+4])
	}
}

// CountNonBlack returns the number of pixels whose RGB is not black.
func (b *Buffer) CountNonBlack() int {
	n := 0
	pix := b.img.Pix
	for i := 0; i < len(pix); i += 4 {
		if pix[i] != 0 || pix[i+1] != 0 || pix[i+2] != 0 {
			n++
		}
	}
	return n
}
