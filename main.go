package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/glstudios/laplace/engine"
	"github.com/glstudios/laplace/engine/config"
	"github.com/glstudios/laplace/engine/core"
	"github.com/glstudios/laplace/engine/platform"
	"github.com/glstudios/laplace/engine/renderer/metadata"
	"github.com/glstudios/laplace/engine/renderer/vulkan"
)

func main() {
	os.Exit(run())
}

func run() int {
	store, err := config.NewStore()
	if err != nil {
		return exitCode(err)
	}
	cfg, err := store.Sync()
	if err != nil {
		return exitCode(err)
	}

	app := engine.DefaultApplicationConfig()
	opts := core.LogOptions{Level: app.LogLevel, Directory: cfg.Main.LogDirectory}
	return withLogging(opts, func() error {
		core.LogInfo("Configuration loaded from %s.", store.Path())
		return serve(store, cfg, app)
	})
}

// withLogging runs fn with logging set up from opts. The exit code, and the
// error behind it, are logged before the log file is closed.
func withLogging(opts core.LogOptions, fn func() error) int {
	logs, err := core.SetupLogging(opts)
	if err != nil {
		return exitCode(errors.Join(core.ErrConfigIO, err))
	}
	defer logs.Close()
	return exitCode(fn())
}

func serve(store *config.Store, cfg config.Configuration, app *engine.ApplicationConfig) error {
	loop, err := platform.NewEventLoop()
	if err != nil {
		return err
	}
	defer loop.Terminate()

	instance, err := vulkan.NewInstance(metadata.RendererBackendConfig{
		ApplicationName: app.Name,
		EngineName:      "Laplace Engine",
	})
	if err != nil {
		return err
	}

	opts := []engine.Option{}
	watcher, err := config.NewWatcher(store, cfg)
	if err != nil {
		core.LogWarn("configuration changes will not be picked up: %s", err)
	} else {
		opts = append(opts, engine.WithConfigWatcher(watcher))
	}

	e := engine.New(app, cfg, instance, opts...)
	defer e.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop.SetControlFlow(platform.ControlFlowPoll)
	return loop.Run(ctx, e)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	core.LogError("%s", err)

	switch {
	case errors.Is(err, core.ErrConfigDirUnavailable),
		errors.Is(err, core.ErrConfigIO),
		errors.Is(err, core.ErrConfigParse):
		return 2
	case errors.Is(err, core.ErrSurfaceAcquire):
		return 4
	case errors.Is(err, core.ErrNoBackend),
		errors.Is(err, core.ErrWindowCreation),
		errors.Is(err, core.ErrSurfaceCreation),
		errors.Is(err, core.ErrGraphicsAdapter),
		errors.Is(err, core.ErrGraphicsDevice),
		errors.Is(err, core.ErrSurfaceFormat),
		errors.Is(err, core.ErrSurfaceConfigure):
		return 3
	}
	return 1
}
