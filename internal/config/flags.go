package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagSource     = flag.String("source", "", "Source kind: depth, sequence or pcd")
	flagPath       = flag.String("path", "", "Depth image, sequence directory or PCD file")
	flagColor      = flag.String("color", "", "Aligned color image or color directory")
	flagNoPainter  = flag.Bool("no-painter", false, "Draw points in acquisition order")
	flagHover      = flag.Bool("hover-orbit", false, "Orbit on pointer motion without a button")
	flagLogFormat  = flag.String("log-format", "", "Log format: console or json")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Viewer.ShowFPS = true
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagSource != "" {
		cfg.Source.Kind = *flagSource
	}
	if *flagPath != "" {
		cfg.Source.Path = *flagPath
	}
	if *flagColor != "" {
		cfg.Source.Color = *flagColor
	}
	if *flagNoPainter {
		cfg.Viewer.Painter = false
	}
	if *flagLogFormat != "" {
		cfg.Logging.Format = *flagLogFormat
	}
	if *flagHover {
		cfg.Viewer.HoverOrbit = true
	}
}
