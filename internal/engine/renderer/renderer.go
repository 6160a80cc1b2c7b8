// Package renderer composes a viewer frame on the CPU: reference overlays,
// the depth-sorted point cloud and the pivot gizmo.
package renderer

import (
	"github.com/Faultbox/depthview/internal/engine/camera"
	"github.com/Faultbox/depthview/internal/engine/debug"
	"github.com/Faultbox/depthview/internal/engine/framebuffer"
	"github.com/Faultbox/depthview/internal/engine/texture"
	"github.com/Faultbox/depthview/internal/engine/transform"
	"github.com/Faultbox/depthview/pkg/math"
)

// Scene placement of the reference overlays.
var (
	gridOrigin = math.Vec3{X: 0, Y: 0.5, Z: 1}
)

const (
	originAxesSize      float32 = 0.1
	originAxesThickness         = 1
	pivotAxesThickness          = 4
)

// Config holds renderer configuration.
type Config struct {
	// Painter sorts points far to near before drawing.
	Painter bool

	// Overlay switches
	ShowGrid       bool
	ShowFrustum    bool
	ShowOriginAxes bool
}

// DefaultConfig returns the configuration with every overlay enabled.
func DefaultConfig() Config {
	return Config{
		Painter:        true,
		ShowGrid:       true,
		ShowFrustum:    true,
		ShowOriginAxes: true,
	}
}

// Context bundles what every drawing call of one frame needs: the camera
// pose captured for the frame and the buffer being drawn into.
type Context struct {
	Pose   camera.Pose
	Target *framebuffer.Buffer

	view      transform.View
	projector transform.Projector
}

// NewContext prepares a drawing context for target.
func NewContext(pose camera.Pose, target *framebuffer.Buffer) *Context {
	return &Context{
		Pose:      pose,
		Target:    target,
		view:      transform.NewView(pose),
		projector: transform.NewProjector(target.Size()),
	}
}

// Retarget returns a copy of the context that writes into buf but keeps
// projecting onto the original target size. The staging path relies on this:
// points are projected at output resolution and scaled down by the
// decimation factor into the native-size buffer.
func (c *Context) Retarget(buf *framebuffer.Buffer) *Context {
	cp := *c
	cp.Target = buf
	return &cp
}

// View returns the frame's view transform.
func (c *Context) View() transform.View {
	return c.view
}

// Canvas returns an overlay canvas drawing into the context's target.
func (c *Context) Canvas() *debug.Canvas {
	return debug.NewCanvas(c.Target, c.view)
}

// Scene is the per-frame input from the acquisition side.
type Scene struct {
	Vertices  []math.Vec3
	TexCoords []math.Vec2
	Source    *texture.Texture

	// Intrinsics of the (decimated) depth stream. Its size is the native
	// resolution of the cloud. May be nil, which disables the frustum and
	// the staging path.
	Intrinsics debug.Deprojector

	// Unorganized clouds have no native raster: they are never staged or
	// scaled and get no frustum.
	Unorganized bool
}

// Rasterizer holds per-frame scratch space so that repeated frames do not
// allocate.
type Rasterizer struct {
	viewed []math.Vec3
	order  []int32
}

// Stats describes the last rendered frame.
type Stats struct {
	Points  int
	Drawn   int
	Staged  bool
	Gizmo   bool
	Painter bool
}

// Renderer drives the per-frame sequence.
type Renderer struct {
	config  Config
	raster  Rasterizer
	staging *framebuffer.Buffer
	stats   Stats
}

// New creates a new renderer.
func New(cfg Config) *Renderer {
	return &Renderer{config: cfg}
}

// Config returns the renderer configuration.
func (r *Renderer) Config() Config {
	return r.config
}

// SetPainter switches painter ordering on or off.
func (r *Renderer) SetPainter(on bool) {
	r.config.Painter = on
}

// Stats returns statistics of the last Render call.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Render composes one frame into target: clear, overlays, point cloud and,
// while a pointer button is held, the pivot axes on top.
//
// When ScaleToOutput is set and the target differs from the native cloud
// size, the cloud is drawn into a native-size staging buffer first, which is
// then resampled onto the target keeping only non-black pixels.
func (r *Renderer) Render(pose camera.Pose, target *framebuffer.Buffer, sc Scene) Stats {
	if sc.Unorganized {
		pose.ScaleToOutput = false
	}
	ctx := NewContext(pose, target)
	target.Clear()

	canvas := ctx.Canvas()
	if r.config.ShowGrid {
		canvas.Grid(gridOrigin, math.Mat3Identity(), debug.DefaultGridSize, debug.DefaultGridCells, debug.GridColor)
	}
	if r.config.ShowFrustum && sc.Intrinsics != nil && !sc.Unorganized {
		canvas.Frustum(sc.Intrinsics, debug.FrustumColor)
	}
	if r.config.ShowOriginAxes {
		canvas.Axes(math.Vec3{}, math.Mat3Identity(), originAxesSize, originAxesThickness)
	}

	stats := Stats{Points: min(len(sc.Vertices), len(sc.TexCoords)), Painter: r.config.Painter}

	nativeW, nativeH, staged := r.stagingSize(pose, target, sc)
	if !staged {
		stats.Drawn = r.raster.PointCloud(ctx, sc.Vertices, sc.TexCoords, sc.Source, r.config.Painter)
	} else {
		if r.staging == nil {
			r.staging = framebuffer.New(nativeW, nativeH)
		}
		r.staging.Resize(nativeW, nativeH)
		r.staging.Clear()

		stats.Drawn = r.raster.PointCloud(ctx.Retarget(r.staging), sc.Vertices, sc.TexCoords, sc.Source, r.config.Painter)
		target.CompositeNonBlack(r.staging)
		stats.Staged = true
	}

	// Axes at the pivot with the identity frame show up rotated by the view.
	if pose.AnyButton() {
		canvas.Axes(pose.Pivot(), math.Mat3Identity(), debug.DefaultAxesSize, pivotAxesThickness)
		stats.Gizmo = true
	}

	r.stats = stats
	return stats
}

func (r *Renderer) stagingSize(pose camera.Pose, target *framebuffer.Buffer, sc Scene) (w, h int, staged bool) {
	if !pose.ScaleToOutput || sc.Intrinsics == nil {
		return 0, 0, false
	}
	w, h = sc.Intrinsics.Size()
	if w < 1 || h < 1 || target.SameSize(w, h) {
		return 0, 0, false
	}
	return w, h, true
}
