package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/chickadee/internal/config"
	"github.com/zeusync/chickadee/internal/core/engine"
	"github.com/zeusync/chickadee/internal/core/events/bus"
	"github.com/zeusync/chickadee/internal/core/observability/log"
	"github.com/zeusync/chickadee/internal/core/scene"
	"github.com/zeusync/chickadee/internal/core/setup"
	"github.com/zeusync/chickadee/internal/server"
)

// ProviderSet builds an App from a Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideBus,
	ProvideScene,
	ProvideEngine,
	ProvideViewer,
	setup.DefaultRegistry,
	NewApp,
)

func ProvideLogger(cfg config.Config) *log.Logger {
	return log.NewWithOptions(cfg.LogOptions())
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideScene(logger *log.Logger, b bus.EventBus) *scene.Scene {
	return scene.New(scene.WithLogger(logger), scene.WithEventBus(b))
}

func ProvideEngine(cfg config.Config, s *scene.Scene, b bus.EventBus, logger *log.Logger) (*engine.Engine, func(), error) {
	e, err := engine.New(s, b, engine.WithConfig(cfg.Engine), engine.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return e, func() { _ = e.Close() }, nil
}

// ProvideViewer returns nil when the viewer is disabled.
func ProvideViewer(cfg config.Config, e *engine.Engine, b bus.EventBus, logger *log.Logger) (*server.Server, func(), error) {
	if !cfg.Viewer.Enabled {
		return nil, func() {}, nil
	}
	srv, err := server.NewServer(cfg.Viewer, e, b, logger)
	if err != nil {
		return nil, nil, err
	}
	return srv, func() { _ = srv.Close() }, nil
}
