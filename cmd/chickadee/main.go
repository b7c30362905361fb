package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"

	"github.com/zeusync/chickadee/internal/config"
	"github.com/zeusync/chickadee/internal/core/observability/log"
	"github.com/zeusync/chickadee/internal/injector"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		scenePath  = flag.String("scene", "", "scene description, overrides scene.file")
		viewer     = flag.String("viewer", "", "viewer listen address, enables the viewer")
		frames     = flag.Uint64("frames", 0, "stop after this many frames, overrides engine.max_frames")
		profiling  = flag.String("profile", "", "write a profile: cpu, mem, trace or block")
	)
	flag.Parse()

	p, err := startProfile(*profiling)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if p != nil {
		defer p.Stop()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		return 1
	}
	if *scenePath != "" {
		cfg.Scene.File = *scenePath
	}
	if *viewer != "" {
		cfg.Viewer.Enabled = true
		cfg.Viewer.ListenAddr = *viewer
	}
	if *frames > 0 {
		cfg.Engine.MaxFrames = *frames
	}
	if err = cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error in config:", err)
		return 1
	}

	if err = run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() { _ = app.Logger.Sync() }()

	app.Logger.Info("Starting",
		log.String("scene", cfg.Scene.File),
		log.Int("target_fps", cfg.Engine.TargetFPS),
		log.Bool("viewer", cfg.Viewer.Enabled))

	if err = app.Run(ctx); err != nil {
		app.Logger.Error("Engine stopped", log.Error(err))
		return err
	}
	app.Logger.Info("Stopped", log.Uint64("frames", app.Engine.Frame()))
	return nil
}

type stopper interface{ Stop() }

func startProfile(kind string) (stopper, error) {
	var mode func(*profile.Profile)
	switch kind {
	case "":
		return nil, nil
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	case "trace":
		mode = profile.TraceProfile
	case "block":
		mode = profile.BlockProfile
	default:
		return nil, fmt.Errorf("unknown profile kind %q", kind)
	}
	return profile.Start(mode, profile.ProfilePath("."), profile.NoShutdownHook), nil
}
