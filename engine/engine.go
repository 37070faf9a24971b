package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/glstudios/laplace/engine/config"
	"github.com/glstudios/laplace/engine/core"
	"github.com/glstudios/laplace/engine/renderer"
	"github.com/glstudios/laplace/engine/renderer/metadata"
)

type Stage uint8

const (
	// No window or surface exists yet.
	StageUninitialized Stage = iota
	// The window and its presentation surface are live.
	StageHasSurface
	// A close was requested. Terminal.
	StageExited
)

func (s Stage) String() string {
	switch s {
	case StageUninitialized:
		return "uninitialized"
	case StageHasSurface:
		return "has_surface"
	case StageExited:
		return "exited"
	}
	return "unknown"
}

// Presenter renders to and presents on one window.
type Presenter interface {
	ID() uuid.UUID
	Reconfigure(width, height uint32) error
	RenderFrame() error
	Shutdown()
}

// SurfaceFactory binds a Presenter to a freshly created window.
type SurfaceFactory func(ctx context.Context, instance metadata.Instance, window metadata.Window, opts renderer.SurfaceOptions) (Presenter, error)

// NewRendererSurface is the default SurfaceFactory.
func NewRendererSurface(ctx context.Context, instance metadata.Instance, window metadata.Window, opts renderer.SurfaceOptions) (Presenter, error) {
	s, err := renderer.NewSurface(ctx, instance, window, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ConfigSource reports configuration changes made while running.
type ConfigSource interface {
	Poll() (config.Configuration, bool, error)
	Close() error
}

type Option func(*Engine)

func WithSurfaceFactory(f SurfaceFactory) Option {
	return func(e *Engine) {
		e.newSurface = f
	}
}

func WithConfigWatcher(w ConfigSource) Option {
	return func(e *Engine) {
		e.watcher = w
	}
}

// Engine drives the application through its stages in response to the
// events of the platform loop. It implements core.EventHandler.
type Engine struct {
	app        *ApplicationConfig
	config     config.Configuration
	instance   metadata.Instance
	newSurface SurfaceFactory
	watcher    ConfigSource

	stage     Stage
	window    core.Window
	surface   Presenter
	suspended bool
	width     uint32
	height    uint32

	clock    *core.Clock
	lastTime time.Duration
	metrics  *core.FrameMetrics

	shutdown bool
}

// New takes ownership of instance. It is destroyed by Shutdown.
func New(app *ApplicationConfig, cfg config.Configuration, instance metadata.Instance, opts ...Option) *Engine {
	if app == nil {
		app = DefaultApplicationConfig()
	}
	e := &Engine{
		app:        app,
		config:     cfg,
		instance:   instance,
		newSurface: NewRendererSurface,
		stage:      StageUninitialized,
		clock:      core.NewClock(),
		metrics:    core.NewFrameMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Stage() Stage {
	return e.stage
}

func (e *Engine) Config() config.Configuration {
	return e.config
}

// Suspended reports whether rendering is paused for a zero-sized window.
func (e *Engine) Suspended() bool {
	return e.suspended
}

func (e *Engine) Metrics() *core.FrameMetrics {
	return e.metrics
}

// Resumed creates the window and its surface. Later calls keep the
// existing ones.
func (e *Engine) Resumed(loop core.EventLoop) error {
	if e.stage != StageUninitialized {
		core.LogDebug("resumed in stage %s, nothing to do", e.stage)
		return nil
	}

	window, err := loop.CreateWindow(e.app.windowAttributes())
	if err != nil {
		if !errors.Is(err, core.ErrWindowCreation) {
			err = errors.Join(core.ErrWindowCreation, err)
		}
		return err
	}

	surface, err := e.newSurface(loop.Context(), e.instance, window, renderer.SurfaceOptions{
		PowerPreference: e.config.Render.PreferredGPU,
	})
	if err != nil {
		window.Destroy()
		return err
	}

	e.window = window
	e.surface = surface
	e.width, e.height = window.InnerSize()
	e.stage = StageHasSurface
	core.LogInfo("Application resumed with surface %s (%dx%d).", surface.ID(), e.width, e.height)

	e.clock.Start()
	e.lastTime = 0
	window.RequestRedraw()
	return nil
}

func (e *Engine) WindowEvent(loop core.EventLoop, event core.WindowEvent) error {
	if e.stage != StageHasSurface {
		return nil
	}

	switch event.Code {
	case core.EVENT_CODE_RESIZED:
		return e.onResized(event.Width, event.Height)
	case core.EVENT_CODE_CLOSE_REQUESTED:
		core.LogInfo("EVENT_CODE_CLOSE_REQUESTED received, shutting down.")
		e.stage = StageExited
		loop.Exit()
		return nil
	case core.EVENT_CODE_REDRAW_REQUESTED:
		return e.onRedraw()
	}
	return nil
}

func (e *Engine) onResized(width, height uint32) error {
	if width == e.width && height == e.height {
		return nil
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	if err := e.surface.Reconfigure(width, height); err != nil {
		return err
	}

	// Handle minimization
	if width == 0 || height == 0 {
		if !e.suspended {
			core.LogInfo("Window minimized, suspending rendering.")
			e.suspended = true
		}
		return nil
	}
	if e.suspended {
		core.LogInfo("Window restored, resuming rendering.")
		e.suspended = false
		e.window.RequestRedraw()
	}
	return nil
}

func (e *Engine) onRedraw() error {
	if e.suspended {
		return nil
	}

	e.clock.Update()
	now := e.clock.Elapsed()
	delta := now - e.lastTime
	e.lastTime = now

	if err := e.surface.RenderFrame(); err != nil {
		if errors.Is(err, core.ErrSurfaceZeroSized) {
			core.LogInfo("Surface has no area, suspending rendering.")
			e.suspended = true
			return nil
		}
		return err
	}

	if e.metrics.Update(delta) {
		fps, frameTime := e.metrics.Frame()
		core.LogDebug("FPS: %.0f (%.2fms average frame time)", fps, frameTime)
	}
	return nil
}

// AboutToWait picks up configuration changes. Reload failures are logged
// and the current configuration is kept.
func (e *Engine) AboutToWait(loop core.EventLoop) error {
	if e.watcher == nil || e.stage == StageExited {
		return nil
	}
	cfg, changed, err := e.watcher.Poll()
	if err != nil {
		core.LogWarn("configuration reload failed, keeping the current one: %s", err)
		return nil
	}
	if !changed {
		return nil
	}
	if cfg.Render.PreferredGPU != e.config.Render.PreferredGPU {
		core.LogInfo("preferred_gpu changed to %s, applied on next start", cfg.Render.PreferredGPU)
	}
	e.config = cfg
	core.LogInfo("Configuration reloaded.")
	return nil
}

// Shutdown releases the surface, then the window, then the graphics
// instance. It is safe to call more than once.
func (e *Engine) Shutdown() {
	if e.shutdown {
		return
	}
	e.shutdown = true
	e.stage = StageExited

	if e.surface != nil {
		e.surface.Shutdown()
		e.surface = nil
	}
	if e.window != nil {
		e.window.Destroy()
		e.window = nil
	}
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			core.LogWarn("closing config watcher: %s", err)
		}
		e.watcher = nil
	}
	if e.instance != nil {
		e.instance.Destroy()
		e.instance = nil
	}
	e.clock.Stop()
	core.LogInfo("Engine shut down after %d frames.", e.metrics.TotalFrames())
}
