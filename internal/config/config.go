// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Faultbox/depthview/internal/capture"
	"github.com/Faultbox/depthview/internal/engine/camera"
	"github.com/Faultbox/depthview/internal/logger"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Camera  CameraConfig  `yaml:"camera"`
	Source  SourceConfig  `yaml:"source"`
	Capture CaptureConfig `yaml:"capture"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// ViewerConfig holds rendering switches.
type ViewerConfig struct {
	Painter     bool `yaml:"painter"`
	ShowGrid    bool `yaml:"show_grid"`
	ShowFrustum bool `yaml:"show_frustum"`
	ShowAxes    bool `yaml:"show_axes"`
	// HoverOrbit orbits on pointer motion without a held button.
	HoverOrbit bool `yaml:"hover_orbit"`
	ShowFPS    bool `yaml:"show_fps"`
}

// CameraConfig holds the starting pose. Angles are in degrees.
type CameraConfig struct {
	Pitch      float32 `yaml:"pitch"`
	Yaw        float32 `yaml:"yaw"`
	Distance   float32 `yaml:"distance"`
	Decimation int     `yaml:"decimation"`
	Scale      bool    `yaml:"scale"`
	Color      bool    `yaml:"color"`
}

// SourceConfig selects the frame source.
type SourceConfig struct {
	Kind       string             `yaml:"kind"`
	Path       string             `yaml:"path"`
	Color      string             `yaml:"color"`
	Roots      []string           `yaml:"roots"`
	Intrinsics capture.Intrinsics `yaml:"intrinsics"`
	DepthScale float32            `yaml:"depth_scale"`
	Near       float32            `yaml:"near"`
	Far        float32            `yaml:"far"`
}

// CaptureConfig holds output locations for screenshots and exports.
type CaptureConfig struct {
	ScreenshotDir string `yaml:"screenshot_dir"`
	ExportDir     string `yaml:"export_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	LogFile string `yaml:"log_file"`
}

// Options converts the logging section into logger options with console
// output enabled.
func (c LoggingConfig) Options() logger.Options {
	opts := logger.Options{Level: c.Level, Format: c.Format, Console: true}
	if c.LogFile != "" {
		opts.File = logger.DefaultFileConfig(c.LogFile)
	}
	return opts
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "depthview",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Viewer: ViewerConfig{
			Painter:     true,
			ShowGrid:    true,
			ShowFrustum: true,
			ShowAxes:    true,
		},
		Camera: CameraConfig{
			Pitch:      -10,
			Yaw:        -15,
			Distance:   2,
			Decimation: 1,
			Scale:      true,
			Color:      true,
		},
		Source: SourceConfig{
			Kind:       string(capture.KindDepth),
			DepthScale: 0.001,
			Near:       0.3,
			Far:        4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logger.FormatConsole,
		},
	}
}

// Validate checks values that would make the viewer unusable.
func (c *Config) Validate() error {
	if c.Window.Width < 1 || c.Window.Height < 1 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if !slices.Contains(capture.Kinds(), capture.Kind(c.Source.Kind)) {
		return fmt.Errorf("%w: unknown source kind %q", ErrInvalid, c.Source.Kind)
	}
	if c.Source.DepthScale <= 0 {
		return fmt.Errorf("%w: depth scale must be positive", ErrInvalid)
	}
	if c.Source.Far <= c.Source.Near {
		return fmt.Errorf("%w: far %.2f must exceed near %.2f", ErrInvalid, c.Source.Far, c.Source.Near)
	}
	in := c.Source.Intrinsics
	if in != (capture.Intrinsics{}) {
		if err := in.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if f := c.Logging.Format; f != "" && f != logger.FormatConsole && f != logger.FormatJSON {
		return fmt.Errorf("%w: log format %q", ErrInvalid, f)
	}
	if c.Camera.Decimation < 0 {
		return fmt.Errorf("%w: negative decimation", ErrInvalid)
	}
	return nil
}

// SourceSpec converts the source section into a capture spec.
func (c *Config) SourceSpec() capture.Spec {
	return capture.Spec{
		Kind:       capture.Kind(c.Source.Kind),
		Path:       c.Source.Path,
		Color:      c.Source.Color,
		Intrinsics: c.Source.Intrinsics,
		Depth: capture.DepthOptions{
			Scale: c.Source.DepthScale,
			Near:  c.Source.Near,
			Far:   c.Source.Far,
		},
	}
}

// Pose returns the starting camera pose.
func (c CameraConfig) Pose() camera.Pose {
	p := camera.DefaultPose()
	p.Pitch = camera.Radians(c.Pitch)
	p.Yaw = camera.Radians(c.Yaw)
	p.Distance = c.Distance
	p.DecimationLevel = min(c.Decimation, camera.MaxDecimation)
	p.ScaleToOutput = c.Scale
	p.UseColorTexture = c.Color
	return p
}
