// Package config loads petface settings from a JSON file and the
// environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Brownie44l1/petface/internal/model"
)

const defaultConfigFile = "petface.json"

// ModelConfig says where the classifier comes from.
type ModelConfig struct {
	Path          string `json:"path"`
	MetadataPath  string `json:"metadataPath"`
	BaseURL       string `json:"baseUrl"`
	CacheDir      string `json:"cacheDir"`
	SharedLibrary string `json:"sharedLibrary"`
}

// CameraConfig selects the live capture device. SnapshotURL wins over Dir;
// with neither set the live endpoints are disabled.
type CameraConfig struct {
	SnapshotURL string `json:"snapshotUrl"`
	Dir         string `json:"dir"`
	FPS         int    `json:"fps"`
}

// UploadConfig bounds image uploads.
type UploadConfig struct {
	MaxBytes   int64  `json:"maxBytes"`
	PreviewDir string `json:"previewDir"`
}

// Config aggregates runtime settings.
type Config struct {
	Port      string       `json:"port"`
	LogLevel  string       `json:"logLevel"`
	SentryDSN string       `json:"sentryDsn"`
	Model     ModelConfig  `json:"model"`
	Camera    CameraConfig `json:"camera"`
	Upload    UploadConfig `json:"upload"`
}

// Load reads the config at path, or petface.json when path is empty. A
// missing file yields the defaults. PORT, PETFACE_MODEL_URL and
// PETFACE_SENTRY_DSN override the file.
func Load(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.ApplyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("PETFACE_MODEL_URL"); v != "" {
		c.Model.BaseURL = v
	}
	if v := os.Getenv("PETFACE_SENTRY_DSN"); v != "" {
		c.SentryDSN = v
	}
}

// ApplyDefaults populates zero values.
func (c *Config) ApplyDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Model.Path == "" {
		c.Model.Path = filepath.Join("models", "model_embedded.onnx")
	}
	if c.Model.MetadataPath == "" {
		c.Model.MetadataPath = filepath.Join("models", "model_metadata.json")
	}
	if c.Model.CacheDir == "" {
		c.Model.CacheDir = filepath.Join("cache", "model")
	}
	if c.Camera.FPS <= 0 {
		c.Camera.FPS = 30
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = 10 << 20
	}
	if c.Upload.PreviewDir == "" {
		c.Upload.PreviewDir = filepath.Join(os.TempDir(), "petface-previews")
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// FrameInterval is the live loop tick derived from Camera.FPS.
func (c Config) FrameInterval() time.Duration {
	if c.Camera.FPS <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.Camera.FPS)
}

// Source converts the model settings for the model package.
func (c Config) Source() model.Source {
	return model.Source{
		ModelPath:     c.Model.Path,
		MetadataPath:  c.Model.MetadataPath,
		BaseURL:       c.Model.BaseURL,
		CacheDir:      c.Model.CacheDir,
		SharedLibrary: c.Model.SharedLibrary,
	}
}

// Level parses LogLevel, falling back to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
