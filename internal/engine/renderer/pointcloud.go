package renderer

import (
	"cmp"
	"slices"

	"github.com/Faultbox/depthview/internal/engine/texture"
	"github.com/Faultbox/depthview/pkg/math"
)

// PointCloud splats verts into the context's target, coloring each point
// with the texel its texcoord addresses in src. Vertices and texcoords are
// index-paired; extra entries in the longer slice are ignored.
//
// With painter set the points are drawn far to near (descending view-space
// z), so nearer points overwrite farther ones at shared pixels. Without it
// the natural order is used. It returns the number of points written.
func (r *Rasterizer) PointCloud(ctx *Context, verts []math.Vec3, texcoords []math.Vec2, src *texture.Texture, painter bool) int {
	n := min(len(verts), len(texcoords))
	if n == 0 || src == nil || src.Width() == 0 || src.Height() == 0 {
		return 0
	}
	verts, texcoords = verts[:n], texcoords[:n]

	r.viewed = ctx.view.ApplyAll(r.viewed, verts)

	r.order = r.order[:0]
	for i := 0; i < n; i++ {
		r.order = append(r.order, int32(i))
	}
	if painter {
		viewed := r.viewed
		slices.SortStableFunc(r.order, func(a, b int32) int {
			return cmp.Compare(viewed[b].Z, viewed[a].Z)
		})
	}

	scale := float32(1)
	if ctx.Pose.ScaleToOutput {
		scale = ctx.Pose.DecimationScale()
	}

	target := ctx.Target
	proj := ctx.projector
	w, h := target.Size()
	fw, fh := float32(w), float32(h)

	written := 0
	for _, i := range r.order {
		p := proj.Project(r.viewed[i]).Scale(scale)
		if !p.IsFinite() {
			continue
		}
		// truncation toward zero maps (-1, 0) to index 0
		if p.X <= -1 || p.X >= fw || p.Y <= -1 || p.Y >= fh {
			continue
		}
		row, col := int(p.Y), int(p.X)

		tc := texcoords[i]
		target.Set(row, col, src.Sample(tc.X, tc.Y))
		written++
	}
	return written
}
