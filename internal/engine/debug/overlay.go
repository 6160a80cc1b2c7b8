// Package debug draws the reference overlays (grid, axes, camera frustum)
// and captures screenshots of the composed frame.
package debug

import (
	"image"
	"image/color"
	gomath "math"

	"github.com/chewxy/math32"
	"golang.org/x/image/vector"

	"github.com/Faultbox/depthview/internal/engine/framebuffer"
	"github.com/Faultbox/depthview/internal/engine/transform"
	"github.com/Faultbox/depthview/pkg/math"
)

// Overlay defaults.
const (
	DefaultGridSize      float32 = 1
	DefaultGridCells             = 10
	DefaultAxesSize      float32 = 0.075
	DefaultAxesThickness         = 2
	DefaultLineThickness         = 1
)

// Overlay colors. Axes colors are fixed: X red, Y green, Z blue.
var (
	GridColor    = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	FrustumColor = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
	AxisXColor   = color.RGBA{R: 0xff, A: 0xff}
	AxisYColor   = color.RGBA{G: 0xff, A: 0xff}
	AxisZColor   = color.RGBA{B: 0xff, A: 0xff}
)

// frustumDepths are the slices drawn by Frustum.
var frustumDepths = []float32{1, 3, 5}

// Deprojector maps an image pixel and a depth to a camera-space point.
type Deprojector interface {
	Size() (width, height int)
	Deproject(px, py, depth float32) math.Vec3
}

// Canvas draws world-space lines into a framebuffer through one view.
type Canvas struct {
	target *framebuffer.Buffer
	view   transform.View
	proj   transform.Projector
	raster vector.Rasterizer
}

// NewCanvas prepares line drawing into target for the given view.
func NewCanvas(target *framebuffer.Buffer, view transform.View) *Canvas {
	return &Canvas{
		target: target,
		view:   view,
		proj:   transform.NewProjector(target.Size()),
	}
}

// Line3D draws the segment p1-p2 anti-aliased. Both endpoints pass through
// the view transform and projection; if either is non-finite the segment is
// dropped. The projected segment is clipped to the target. It reports
// whether anything was drawn.
func (c *Canvas) Line3D(p1, p2 math.Vec3, col color.RGBA, thickness int) bool {
	a := transform.ViewProject(c.view, c.proj, p1)
	b := transform.ViewProject(c.view, c.proj, p2)
	if !a.IsFinite() || !b.IsFinite() {
		return false
	}

	w, h := c.target.Size()
	x0, y0 := float64(math32.Trunc(a.X)), float64(math32.Trunc(a.Y))
	x1, y1 := float64(math32.Trunc(b.X)), float64(math32.Trunc(b.Y))

	x0, y0, x1, y1, ok := clipLine(float64(w-1), float64(h-1), x0, y0, x1, y1)
	if !ok {
		return false
	}
	c.stroke(gomath.Round(x0), gomath.Round(y0), gomath.Round(x1), gomath.Round(y1), col, thickness)
	return true
}

// Grid draws an n x n cell grid of side size in the local XZ plane of
// rotation, centered at origin.
func (c *Canvas) Grid(origin math.Vec3, rotation math.Mat3, size float32, n int, col color.RGBA) {
	if n < 1 {
		return
	}
	s2 := size / 2
	step := size / float32(n)
	for i := 0; i <= n; i++ {
		x := -s2 + float32(i)*step
		c.Line3D(
			origin.Add(math.Vec3{X: x, Z: -s2}.MulMat3(rotation)),
			origin.Add(math.Vec3{X: x, Z: s2}.MulMat3(rotation)),
			col, DefaultLineThickness)
	}
	for i := 0; i <= n; i++ {
		z := -s2 + float32(i)*step
		c.Line3D(
			origin.Add(math.Vec3{X: -s2, Z: z}.MulMat3(rotation)),
			origin.Add(math.Vec3{X: s2, Z: z}.MulMat3(rotation)),
			col, DefaultLineThickness)
	}
}

// Axes draws the local X, Y and Z directions of rotation from origin.
func (c *Canvas) Axes(origin math.Vec3, rotation math.Mat3, size float32, thickness int) {
	c.Line3D(origin, origin.Add(math.Vec3{Z: size}.MulMat3(rotation)), AxisZColor, thickness)
	c.Line3D(origin, origin.Add(math.Vec3{Y: size}.MulMat3(rotation)), AxisYColor, thickness)
	c.Line3D(origin, origin.Add(math.Vec3{X: size}.MulMat3(rotation)), AxisXColor, thickness)
}

// Frustum draws the camera's viewing volume as a stepped wireframe: for each
// depth slice the four image corners are deprojected, joined to the camera
// origin and connected into a quadrilateral.
func (c *Canvas) Frustum(in Deprojector, col color.RGBA) {
	w, h := in.Size()
	fw, fh := float32(w), float32(h)
	var origin math.Vec3

	for _, d := range frustumDepths {
		corners := [4]math.Vec3{
			in.Deproject(0, 0, d),
			in.Deproject(fw, 0, d),
			in.Deproject(fw, fh, d),
			in.Deproject(0, fh, d),
		}
		for _, p := range corners {
			c.Line3D(origin, p, col, DefaultLineThickness)
		}
		for i := range corners {
			c.Line3D(corners[i], corners[(i+1)%4], col, DefaultLineThickness)
		}
	}
}

// stroke rasterizes a segment between pixel indices as a quad of the given
// thickness with square caps.
func (c *Canvas) stroke(x0, y0, x1, y1 float64, col color.RGBA, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	half := float64(thickness) / 2

	// pixel centers
	x0, y0, x1, y1 = x0+0.5, y0+0.5, x1+0.5, y1+0.5

	dx, dy := x1-x0, y1-y0
	length := gomath.Hypot(dx, dy)
	ux, uy := 1.0, 0.0
	if length > 0 {
		ux, uy = dx/length, dy/length
	}
	// along and across the segment
	ax, ay := ux*half, uy*half
	nx, ny := -ay, ax

	quad := [4][2]float64{
		{x0 - ax + nx, y0 - ay + ny},
		{x1 + ax + nx, y1 + ay + ny},
		{x1 + ax - nx, y1 + ay - ny},
		{x0 - ax - nx, y0 - ay - ny},
	}

	minX, minY := gomath.Inf(1), gomath.Inf(1)
	maxX, maxY := gomath.Inf(-1), gomath.Inf(-1)
	for _, p := range quad {
		minX, maxX = gomath.Min(minX, p[0]), gomath.Max(maxX, p[0])
		minY, maxY = gomath.Min(minY, p[1]), gomath.Max(maxY, p[1])
	}
	bounds := image.Rect(
		int(gomath.Floor(minX)), int(gomath.Floor(minY)),
		int(gomath.Ceil(maxX)), int(gomath.Ceil(maxY)),
	).Intersect(c.target.Image().Rect)
	if bounds.Empty() {
		return
	}

	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	c.raster.Reset(bounds.Dx(), bounds.Dy())
	c.raster.MoveTo(float32(quad[0][0]-ox), float32(quad[0][1]-oy))
	for _, p := range quad[1:] {
		c.raster.LineTo(float32(p[0]-ox), float32(p[1]-oy))
	}
	c.raster.ClosePath()
	c.raster.Draw(c.target.Image(), bounds, image.NewUniform(col), image.Point{})
}

// clipLine clips a segment to the rectangle [0,maxX] x [0,maxY] using the
// Liang-Barsky parametric test. ok is false when no part of the segment lies
// inside.
func clipLine(maxX, maxY, x0, y0, x1, y1 float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0

	edges := [4][2]float64{
		{-dx, x0},
		{dx, maxX - x0},
		{-dy, y0},
		{dy, maxY - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}
