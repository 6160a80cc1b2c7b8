package renderer

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/Faultbox/depthview/internal/engine/framebuffer"
	"github.com/Faultbox/depthview/internal/engine/texture"
)

// RenderFlat composes the 2D view: the color image on the left half of
// target and the colorized depth image on the right half, each resampled
// with nearest neighbor filtering. Either texture may be nil.
func RenderFlat(target *framebuffer.Buffer, color, depth *texture.Texture) {
	target.Clear()

	w, h := target.Size()
	left := image.Rect(0, 0, w/2, h)
	right := image.Rect(w/2, 0, w, h)

	for _, part := range []struct {
		tex  *texture.Texture
		rect image.Rectangle
	}{
		{color, left},
		{depth, right},
	} {
		if part.tex == nil || part.rect.Empty() {
			continue
		}
		src := part.tex.Image()
		draw.NearestNeighbor.Scale(target.Image(), part.rect, src, src.Rect, draw.Src, nil)
	}
}
