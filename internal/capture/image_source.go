package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Faultbox/depthview/internal/assets"
	"github.com/Faultbox/depthview/internal/engine/camera"
	"github.com/Faultbox/depthview/internal/engine/texture"
)

// DepthOptions configures how raw depth becomes points and colors.
type DepthOptions struct {
	// Scale converts depth units to meters.
	Scale float32
	// Near and Far bound the colorizer range in meters.
	Near float32
	Far  float32
}

// DefaultDepthOptions matches a millimeter depth stream.
func DefaultDepthOptions() DepthOptions {
	return DepthOptions{Scale: 0.001, Near: 0.3, Far: 4}
}

// DepthImageSource serves one recorded depth image, optionally paired with a
// color image aligned to it.
type DepthImageSource struct {
	assets     *assets.Manager
	depthPath  string
	colorPath  string
	intrinsics Intrinsics
	opts       DepthOptions

	mu     sync.Mutex
	level  int
	frames map[int]*Frame
}

// NewDepthImageSource creates a source for depthPath. colorPath may be empty.
// A zero intrinsics size is taken from the depth image.
func NewDepthImageSource(m *assets.Manager, depthPath, colorPath string, in Intrinsics, opts DepthOptions) *DepthImageSource {
	return &DepthImageSource{
		assets:     m,
		depthPath:  depthPath,
		colorPath:  colorPath,
		intrinsics: in,
		opts:       opts,
		frames:     make(map[int]*Frame),
	}
}

// SetDecimation implements Source.
func (s *DepthImageSource) SetDecimation(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = clampLevel(level)
}

// Next implements Source. Frames are built once per decimation level.
func (s *DepthImageSource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.frames[s.level]; ok {
		return f, nil
	}
	f, err := loadDepthFrame(s.assets, s.depthPath, s.colorPath, s.intrinsics, s.opts, s.level)
	if err != nil {
		return nil, err
	}
	s.frames[s.level] = f
	return f, nil
}

// Close implements Source.
func (s *DepthImageSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.frames)
	return nil
}

func loadDepthFrame(m *assets.Manager, depthPath, colorPath string, in Intrinsics, opts DepthOptions, level int) (*Frame, error) {
	img, err := m.LoadImage(depthPath)
	if err != nil {
		return nil, fmt.Errorf("load depth: %w", err)
	}
	depth, err := DepthFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("read depth %s: %w", depthPath, err)
	}

	if in.Width == 0 || in.Height == 0 {
		in = DefaultIntrinsics(depth.Width, depth.Height)
	}
	if in.Width != depth.Width || in.Height != depth.Height {
		return nil, fmt.Errorf("depth %s is %dx%d, intrinsics expect %dx%d",
			depthPath, depth.Width, depth.Height, in.Width, in.Height)
	}

	depth = Decimate(depth, level)
	in = in.Scaled(1 << level)

	verts, tcs := Deproject(depth, in, opts.Scale)
	f := &Frame{
		Vertices:   verts,
		TexCoords:  tcs,
		Intrinsics: in,
		DepthColor: texture.New(Colorize(depth, opts.Scale, opts.Near, opts.Far)),
		Timestamp:  time.Now(),
	}

	if colorPath != "" {
		cimg, err := m.LoadImage(colorPath)
		if err != nil {
			return nil, fmt.Errorf("load color: %w", err)
		}
		f.Color = texture.New(cimg)
	}
	return f, nil
}

func clampLevel(level int) int {
	return max(0, min(camera.MaxDecimation, level))
}
