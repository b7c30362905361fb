package injector

import (
	"context"
	"fmt"

	"github.com/zeusync/chickadee/internal/config"
	"github.com/zeusync/chickadee/internal/core/engine"
	"github.com/zeusync/chickadee/internal/core/events/bus"
	"github.com/zeusync/chickadee/internal/core/observability/log"
	"github.com/zeusync/chickadee/internal/core/scene"
	"github.com/zeusync/chickadee/internal/core/setup"
	"github.com/zeusync/chickadee/internal/server"
)

// App is the wired object graph of the runner.
type App struct {
	Config   config.Config
	Logger   *log.Logger
	Bus      bus.EventBus
	Engine   *engine.Engine
	Registry setup.Registry
	// Viewer is nil when disabled.
	Viewer *server.Server
}

func NewApp(cfg config.Config, logger *log.Logger, b bus.EventBus, e *engine.Engine, reg setup.Registry, viewer *server.Server) *App {
	return &App{
		Config:   cfg,
		Logger:   logger,
		Bus:      b,
		Engine:   e,
		Registry: reg,
		Viewer:   viewer,
	}
}

// LoadScene builds the configured scene file, if any.
func (a *App) LoadScene() error {
	path := a.Config.Scene.File
	if path == "" {
		return nil
	}
	d, err := setup.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", path, err)
	}
	return a.Engine.WithScene(func(s *scene.Scene) error {
		_, err := setup.Build(s, d, a.Registry)
		return err
	})
}

// Run loads the scene and runs the engine with the enabled services.
func (a *App) Run(ctx context.Context) error {
	if err := a.LoadScene(); err != nil {
		return err
	}
	var services []engine.Service
	if a.Viewer != nil {
		services = append(services, a.Viewer)
	}
	return a.Engine.Run(ctx, services...)
}
