package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/chickadee/internal/core/observability/log"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, log.LevelInfo, cfg.LogLevel())
	assert.Equal(t, time.Second/60, cfg.Engine.FrameInterval())
}

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
log:
  level: debug
  encoding: json
engine:
  target_fps: 0
  max_frames: 10
scene:
  file: demo.yaml
viewer:
  enabled: true
  listen_addr: ":9000"
  write_timeout: 2s
`))
	require.NoError(t, err)
	assert.Equal(t, log.LevelDebug, cfg.LogLevel())
	assert.Equal(t, "json", cfg.LogOptions().Encoding)
	assert.Equal(t, time.Duration(0), cfg.Engine.FrameInterval())
	assert.Equal(t, uint64(10), cfg.Engine.MaxFrames)
	assert.Equal(t, 1024, cfg.Engine.InputQueue)
	assert.Equal(t, "demo.yaml", cfg.Scene.File)
	assert.Equal(t, ":9000", cfg.Viewer.ListenAddr)
	assert.Equal(t, 2*time.Second, cfg.Viewer.WriteTimeout)
	assert.Equal(t, 16, cfg.Viewer.MaxClients)
}

func TestDecodeEmptyDocument(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecodeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "engine:\n  fps: 30\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad encoding", "log:\n  encoding: xml\n"},
		{"negative fps", "engine:\n  target_fps: -1\n"},
		{"viewer without addr", "viewer:\n  enabled: true\n  listen_addr: \"\"\n"},
		{"malformed", "engine: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "chickadee.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  target_fps: 30\n"), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Engine.TargetFPS)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
