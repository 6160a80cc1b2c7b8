package capture

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"slices"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/seqsense/pcgol/pc"

	"github.com/Faultbox/depthview/internal/assets"
	"github.com/Faultbox/depthview/internal/engine/texture"
	"github.com/Faultbox/depthview/pkg/math"
)

// PCDSource serves a point cloud file. Organized clouds (height > 1) keep
// their grid as the image layout; unorganized clouds become an N x 1 strip.
// A VIEWPOINT other than identity is undone so points are in sensor space.
type PCDSource struct {
	assets     *assets.Manager
	path       string
	intrinsics Intrinsics
	opts       DepthOptions

	mu     sync.Mutex
	level  int
	frames map[int]*Frame
}

// NewPCDSource creates a source for the PCD file at path. A zero intrinsics
// size is derived from the cloud layout.
func NewPCDSource(m *assets.Manager, path string, in Intrinsics, opts DepthOptions) *PCDSource {
	return &PCDSource{
		assets:     m,
		path:       path,
		intrinsics: in,
		opts:       opts,
		frames:     make(map[int]*Frame),
	}
}

// SetDecimation implements Source. Organized clouds keep one point per
// 2^level block; unorganized clouds keep every 4^level-th point.
func (s *PCDSource) SetDecimation(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = clampLevel(level)
}

// Next implements Source.
func (s *PCDSource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.frames[s.level]; ok {
		return f, nil
	}
	cloud, err := s.assets.LoadPointCloud(s.path)
	if err != nil {
		return nil, fmt.Errorf("load point cloud: %w", err)
	}
	f, err := FrameFromCloud(cloud, s.intrinsics, s.opts, s.level)
	if err != nil {
		return nil, fmt.Errorf("point cloud %s: %w", s.path, err)
	}
	s.frames[s.level] = f
	return f, nil
}

// Close implements Source.
func (s *PCDSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.frames)
	s.assets.Evict(s.path)
	return nil
}

// FrameFromCloud converts a parsed point cloud into a frame.
func FrameFromCloud(cloud *pc.PointCloud, in Intrinsics, opts DepthOptions, level int) (*Frame, error) {
	if !slices.Contains(cloud.Fields, "x") || !slices.Contains(cloud.Fields, "y") || !slices.Contains(cloud.Fields, "z") {
		return nil, ErrFieldMissing
	}
	if cloud.Points == 0 {
		return nil, ErrNoDepth
	}

	it, err := cloud.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	points := make([]math.Vec3, 0, cloud.Points)
	for i := 0; i < cloud.Points; i++ {
		v := it.Vec3()
		points = append(points, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
		it.Incr()
	}
	undoViewpoint(points, cloud.Viewpoint)

	var colors []color.RGBA
	if slices.Contains(cloud.Fields, "rgb") {
		ct, err := cloud.Uint32Iterator("rgb")
		if err != nil {
			return nil, err
		}
		colors = make([]color.RGBA, cloud.Points)
		for i := range colors {
			colors[i] = unpackRGB(ct.Uint32())
			ct.Incr()
		}
	}

	width, height := cloud.Width, cloud.Height
	unorganized := height <= 1 || width*height != cloud.Points
	if unorganized {
		width, height = cloud.Points, 1
	}
	points, colors, width, height = subsample(points, colors, width, height, level)

	if in.Width == 0 || in.Height == 0 {
		in = DefaultIntrinsics(width, height)
	} else {
		in = in.Scaled(1 << level)
	}

	tcs := make([]math.Vec2, len(points))
	fw, fh := float32(width), float32(height)
	for i := range tcs {
		x, y := i%width, i/width
		tcs[i] = math.Vec2{X: float32(x) / fw, Y: float32(y) / fh}
	}

	depth := image.NewRGBA(image.Rect(0, 0, width, height))
	span := opts.Far - opts.Near
	if span <= 0 {
		span = 1
	}
	for i, p := range points {
		c := color.RGBA{A: 0xff}
		if p.Z > 0 && !math32.IsNaN(p.Z) {
			c = Jet((p.Z - opts.Near) / span)
		}
		depth.SetRGBA(i%width, i/width, c)
	}

	f := &Frame{
		Vertices:    points,
		TexCoords:   tcs,
		Intrinsics:  in,
		Unorganized: unorganized,
		DepthColor:  texture.New(depth),
		Timestamp:   time.Now(),
	}
	if colors != nil {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for i, c := range colors {
			img.SetRGBA(i%width, i/width, c)
		}
		f.Color = texture.New(img)
	}
	return f, nil
}

func subsample(points []math.Vec3, colors []color.RGBA, width, height, level int) ([]math.Vec3, []color.RGBA, int, int) {
	if level <= 0 {
		return points, colors, width, height
	}
	step := 1 << level

	var idx []int
	if height > 1 {
		w, h := width/step, height/step
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				idx = append(idx, y*step*width+x*step)
			}
		}
		width, height = w, h
	} else {
		step *= step
		for i := 0; i < len(points); i += step {
			idx = append(idx, i)
		}
		width = len(idx)
	}

	outP := make([]math.Vec3, len(idx))
	var outC []color.RGBA
	if colors != nil {
		outC = make([]color.RGBA, len(idx))
	}
	for j, i := range idx {
		outP[j] = points[i]
		if colors != nil {
			outC[j] = colors[i]
		}
	}
	return outP, outC, width, height
}

// undoViewpoint maps points from the cloud frame back to the sensor frame.
// vp is tx ty tz qw qx qy qz.
func undoViewpoint(points []math.Vec3, vp []float32) {
	if len(vp) != 7 {
		return
	}
	t := math.Vec3{X: vp[0], Y: vp[1], Z: vp[2]}
	q := math.Quat{W: vp[3], X: vp[4], Y: vp[5], Z: vp[6]}
	if t == (math.Vec3{}) && q == math.QuatIdentity() {
		return
	}
	inv := q.ToMat3().Transpose()
	for i, p := range points {
		points[i] = inv.MulVec(p.Sub(t))
	}
}

func unpackRGB(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func packRGB(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}
