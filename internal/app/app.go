// Package app implements the interactive viewer main loop.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/depthview/internal/assets"
	"github.com/Faultbox/depthview/internal/capture"
	"github.com/Faultbox/depthview/internal/config"
	"github.com/Faultbox/depthview/internal/engine/input"
	"github.com/Faultbox/depthview/internal/engine/interact"
	"github.com/Faultbox/depthview/internal/engine/renderer"
	"github.com/Faultbox/depthview/internal/engine/window"
	"github.com/Faultbox/depthview/internal/logger"
	"github.com/Faultbox/depthview/internal/viewer"
)

// App is the windowed viewer.
type App struct {
	config    *config.Config
	log       *zap.Logger
	assets    *assets.Manager
	window    *window.Window
	presenter *window.Presenter
	input     *input.Input
	session   *viewer.Session
}

// New opens the source, the window and the GL presenter.
func New(cfg *config.Config) (*App, error) {
	log := logger.Named("app")
	log.Info("initializing viewer",
		zap.String("source", cfg.Source.Kind),
		zap.String("path", cfg.Source.Path),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	a := &App{
		config: cfg,
		log:    log,
		assets: assets.NewManager(),
	}
	for _, root := range cfg.Source.Roots {
		if err := a.assets.AddRoot(root); err != nil {
			return nil, err
		}
	}

	src, err := capture.Open(a.assets, cfg.SourceSpec())
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}

	// Create window (this also creates OpenGL context)
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create presenter (AFTER window, since OpenGL context must exist)
	a.presenter, err = window.NewPresenter()
	if err != nil {
		src.Close()
		a.window.Close()
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}

	a.input = input.New()
	dw, dh := a.window.DrawableSize()
	ww, wh := a.window.GetSize()
	a.input.SetPointerScale(ww, wh, dw, dh)

	pose := cfg.Camera.Pose()
	a.session = viewer.New(src, dw, dh, viewer.Options{
		Renderer: renderer.Config{
			Painter:        cfg.Viewer.Painter,
			ShowGrid:       cfg.Viewer.ShowGrid,
			ShowFrustum:    cfg.Viewer.ShowFrustum,
			ShowOriginAxes: cfg.Viewer.ShowAxes,
		},
		Interact:      interact.Options{HoverOrbit: cfg.Viewer.HoverOrbit},
		Pose:          &pose,
		ScreenshotDir: cfg.Capture.ScreenshotDir,
		ExportDir:     cfg.Capture.ExportDir,
	}, logger.Named("viewer"))

	log.Info("viewer initialized successfully")
	return a, nil
}

// Run starts the main loop. It returns when the window closes, a quit key
// is pressed or ctx is done.
func (a *App) Run(ctx context.Context) error {
	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting main loop")

	for ctx.Err() == nil && !a.session.Done() {
		// Calculate delta time
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		// 1. Process input
		if a.input.Update() {
			// Quit event received
			break
		}
		a.handleEvents()

		// 2. Acquire and render
		stats, err := a.session.Step(ctx)
		if err != nil {
			return fmt.Errorf("step error: %w", err)
		}

		// 3. Present (swap buffers)
		dw, dh := a.window.DrawableSize()
		if err := a.presenter.Present(a.session.Target().Image(), dw, dh); err != nil {
			return fmt.Errorf("present error: %w", err)
		}
		a.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			fields := logger.FrameFields(frameCount, dt, stats.Points, stats.Drawn)
			if a.config.Viewer.ShowFPS {
				a.log.Info("fps", fields...)
				a.window.SetTitle(fmt.Sprintf("%s - %d fps, %d points", a.config.Window.Title, frameCount, stats.Drawn))
			} else {
				a.log.Debug("fps", fields...)
			}
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handleEvents() {
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			dw, dh := a.window.DrawableSize()
			a.input.SetPointerScale(event.Width, event.Height, dw, dh)
			a.session.Resize(dw, dh)
		case input.EventPointer:
			a.session.HandlePointer(event.Pointer)
		case input.EventKeyDown:
			cmd := viewer.CommandForKey(event.Key)
			if err := a.session.Execute(cmd); err != nil {
				a.log.Warn("command failed", zap.Stringer("command", cmd), zap.Error(err))
			}
		}
	}
}

// Close cleans up viewer resources.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.session != nil {
		if err := a.session.Close(); err != nil {
			a.log.Warn("closing source", zap.Error(err))
		}
	}
	if a.presenter != nil {
		a.presenter.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
	a.assets.Close()
}
