package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PETFACE_MODEL_URL", "")
	t.Setenv("PETFACE_SENTRY_DSN", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "petface.json"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, filepath.Join("models", "model_embedded.onnx"), cfg.Model.Path)
	assert.EqualValues(t, 10<<20, cfg.Upload.MaxBytes)
	assert.Equal(t, time.Second/30, cfg.FrameInterval())
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "petface.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"port": "9000",
		"logLevel": "debug",
		"model": {"path": "m.onnx", "metadataPath": "m.json"},
		"camera": {"dir": "frames", "fps": 10}
	}`), 0o644))
	t.Setenv("PORT", "7000")
	t.Setenv("PETFACE_MODEL_URL", "https://example.com/models/abc/")
	t.Setenv("PETFACE_SENTRY_DSN", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, 100*time.Millisecond, cfg.FrameInterval())

	src := cfg.Source()
	assert.Equal(t, "m.onnx", src.ModelPath)
	assert.Equal(t, "https://example.com/models/abc/", src.BaseURL)
	assert.Equal(t, "frames", cfg.Camera.Dir)
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "petface.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
