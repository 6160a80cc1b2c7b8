// Package viewer ties camera state, interaction, acquisition and rendering
// into a session that can run with or without a window.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/depthview/internal/capture"
	"github.com/Faultbox/depthview/internal/engine/camera"
	"github.com/Faultbox/depthview/internal/engine/debug"
	"github.com/Faultbox/depthview/internal/engine/framebuffer"
	"github.com/Faultbox/depthview/internal/engine/interact"
	"github.com/Faultbox/depthview/internal/engine/renderer"
)

// ErrNoFrame is returned by commands that need a frame before the first
// step.
var ErrNoFrame = errors.New("viewer: no frame")

// FilePrefix names screenshot and export files.
const FilePrefix = "depthview"

// Options configures a session.
type Options struct {
	Renderer renderer.Config
	Interact interact.Options

	// Pose is the starting camera pose. Zero means camera.DefaultPose.
	Pose *camera.Pose

	// ScreenshotDir and ExportDir default to the working directory.
	ScreenshotDir string
	ExportDir     string
}

// DefaultOptions returns the stock viewer setup.
func DefaultOptions() Options {
	return Options{
		Renderer: renderer.DefaultConfig(),
	}
}

// pauser is implemented by sources that can hold their current frame.
type pauser interface {
	SetPaused(paused bool)
}

// Session is one viewer instance.
type Session struct {
	state    *camera.State
	control  *interact.Controller
	renderer *renderer.Renderer
	source   capture.Source
	shots    *debug.ScreenshotCapture
	target   *framebuffer.Buffer
	log      *zap.Logger

	exportDir string
	now       func() time.Time

	frame  *capture.Frame
	paused bool
	mode   Mode
	quit   bool
}

// New creates a session rendering into a width x height buffer.
func New(src capture.Source, width, height int, opts Options, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	state := camera.NewState()
	if opts.Pose != nil {
		state = camera.NewStateFromPose(*opts.Pose)
	}
	src.SetDecimation(state.Pose().DecimationLevel)

	return &Session{
		state:     state,
		control:   interact.NewController(state, width, height, opts.Interact),
		renderer:  renderer.New(opts.Renderer),
		source:    src,
		shots:     debug.NewScreenshotCapture(opts.ScreenshotDir, FilePrefix),
		target:    framebuffer.New(width, height),
		log:       log,
		exportDir: opts.ExportDir,
		now:       time.Now,
	}
}

// State returns the camera state.
func (s *Session) State() *camera.State {
	return s.state
}

// Target returns the output buffer.
func (s *Session) Target() *framebuffer.Buffer {
	return s.target
}

// Frame returns the frame drawn by the last step.
func (s *Session) Frame() *capture.Frame {
	return s.frame
}

// Paused reports whether frame acquisition is held.
func (s *Session) Paused() bool {
	return s.paused
}

// Mode returns the current display mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// Done reports whether a quit was requested.
func (s *Session) Done() bool {
	return s.quit
}

// Stats returns renderer statistics of the last step.
func (s *Session) Stats() renderer.Stats {
	return s.renderer.Stats()
}

// Resize changes the output size.
func (s *Session) Resize(width, height int) {
	if width < 1 || height < 1 || s.target.SameSize(width, height) {
		return
	}
	s.target.Resize(width, height)
	s.control.SetViewport(width, height)
	s.log.Debug("viewport resized", zap.Int("width", width), zap.Int("height", height))
}

// HandlePointer forwards a pointer event to the interaction controller.
func (s *Session) HandlePointer(ev interact.Event) {
	s.control.Handle(ev)
}

// Execute runs a command. Screenshot and export failures are returned; the
// session stays usable.
func (s *Session) Execute(cmd Command) error {
	switch cmd {
	case CommandReset:
		s.state.Reset()
	case CommandPause:
		s.paused = !s.paused
		if p, ok := s.source.(pauser); ok {
			p.SetPaused(s.paused)
		}
		s.log.Info("pause", zap.Bool("paused", s.paused))
	case CommandDecimate:
		level := s.state.CycleDecimation()
		s.source.SetDecimation(level)
		s.log.Info("decimation", zap.Int("level", level))
	case CommandScale:
		s.log.Info("scale to output", zap.Bool("on", s.state.ToggleScale()))
	case CommandColor:
		s.log.Info("color texture", zap.Bool("on", s.state.ToggleColor()))
	case CommandScreenshot:
		path, err := s.shots.Capture(s.target)
		if err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
		s.log.Info("screenshot saved", zap.String("path", path))
	case CommandExport:
		path, err := s.export()
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		s.log.Info("point cloud exported", zap.String("path", path))
	case CommandMode:
		if s.mode == ModeCloud {
			s.mode = ModeFlat
		} else {
			s.mode = ModeCloud
		}
		s.log.Info("mode", zap.Stringer("mode", s.mode))
	case CommandPainter:
		on := !s.renderer.Config().Painter
		s.renderer.SetPainter(on)
		s.log.Info("painter ordering", zap.Bool("on", on))
	case CommandQuit:
		s.quit = true
	}
	return nil
}

// Step acquires a frame unless paused and draws it into the target.
func (s *Session) Step(ctx context.Context) (renderer.Stats, error) {
	_, holds := s.source.(pauser)
	if s.frame == nil || !s.paused || holds {
		f, err := s.source.Next(ctx)
		if err != nil {
			return renderer.Stats{}, fmt.Errorf("next frame: %w", err)
		}
		s.frame = f
	}

	pose := s.state.Pose()
	if s.mode == ModeFlat {
		renderer.RenderFlat(s.target, s.frame.Color, s.frame.DepthColor)
		return renderer.Stats{}, nil
	}

	return s.renderer.Render(pose, s.target, renderer.Scene{
		Vertices:    s.frame.Vertices,
		TexCoords:   s.frame.TexCoords,
		Source:      s.frame.ColorSource(pose.UseColorTexture),
		Intrinsics:  s.frame.Intrinsics,
		Unorganized: s.frame.Unorganized,
	}), nil
}

// Close releases the source.
func (s *Session) Close() error {
	return s.source.Close()
}

func (s *Session) export() (string, error) {
	if s.frame == nil {
		return "", ErrNoFrame
	}
	if s.exportDir != "" {
		if err := os.MkdirAll(s.exportDir, 0755); err != nil {
			return "", fmt.Errorf("creating export dir: %w", err)
		}
	}
	name := fmt.Sprintf("%s_%s.pcd", FilePrefix, s.now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(s.exportDir, name)

	pose := s.state.Pose()
	if err := capture.ExportPCD(path, s.frame, s.frame.ColorSource(pose.UseColorTexture)); err != nil {
		return "", err
	}
	return path, nil
}
