// Package config loads the engine configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/chickadee/internal/core/observability/log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds engine configuration
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Engine EngineConfig `yaml:"engine"`
	Scene  SceneConfig  `yaml:"scene"`
	Viewer ViewerConfig `yaml:"viewer"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Encoding    string `yaml:"encoding"`
	Development bool   `yaml:"development"`
}

type EngineConfig struct {
	// TargetFPS paces the frame loop. Zero runs frames back to back.
	TargetFPS int `yaml:"target_fps"`
	// MaxFrames stops the loop after that many frames. Zero runs until
	// cancelled.
	MaxFrames uint64 `yaml:"max_frames"`
	// InputQueue bounds the number of input events buffered between frames.
	InputQueue int `yaml:"input_queue"`
}

type SceneConfig struct {
	// File is a scene description built at startup. Empty starts with an
	// empty scene.
	File string `yaml:"file"`
}

type ViewerConfig struct {
	Enabled        bool          `yaml:"enabled"`
	ListenAddr     string        `yaml:"listen_addr"`
	MaxClients     int           `yaml:"max_clients"`
	MaxMessageSize int64         `yaml:"max_message_size"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	SendBuffer     int           `yaml:"send_buffer"`
}

// Default returns default engine configuration
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Engine: EngineConfig{
			TargetFPS:  60,
			InputQueue: 1024,
		},
		Viewer: ViewerConfig{
			Enabled:        false,
			ListenAddr:     "127.0.0.1:8080",
			MaxClients:     16,
			MaxMessageSize: 64 * 1024, // 64KB
			WriteTimeout:   5 * time.Second,
			SendBuffer:     4,
		},
	}
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.LevelInfo
	}
	return level
}

// LogOptions maps the log section onto logger options.
func (c Config) LogOptions() log.Options {
	return log.Options{
		Level:       c.LogLevel(),
		Encoding:    c.Log.Encoding,
		Development: c.Log.Development,
	}
}

// FrameInterval is the pacing interval derived from TargetFPS. Zero means
// unpaced.
func (c EngineConfig) FrameInterval() time.Duration {
	if c.TargetFPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.TargetFPS)
}

func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	switch c.Log.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.encoding must be console or json, got %q", ErrInvalidConfig, c.Log.Encoding)
	}
	if c.Engine.TargetFPS < 0 {
		return fmt.Errorf("%w: engine.target_fps must not be negative", ErrInvalidConfig)
	}
	if c.Engine.InputQueue <= 0 {
		return fmt.Errorf("%w: engine.input_queue must be positive", ErrInvalidConfig)
	}
	if c.Viewer.Enabled {
		if c.Viewer.ListenAddr == "" {
			return fmt.Errorf("%w: viewer.listen_addr is required", ErrInvalidConfig)
		}
		if c.Viewer.MaxClients <= 0 {
			return fmt.Errorf("%w: viewer.max_clients must be positive", ErrInvalidConfig)
		}
		if c.Viewer.SendBuffer <= 0 {
			return fmt.Errorf("%w: viewer.send_buffer must be positive", ErrInvalidConfig)
		}
	}
	return nil
}

// Decode reads YAML on top of Default and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a YAML file. An empty path yields Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}
