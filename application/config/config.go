// Package config provides runtime configuration loading and helpers for
// reading validated capability arguments.
package config

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/resq-ai/resq-core/application/validation"
	"github.com/resq-ai/resq-core/domain/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvLogLevel    = "RESQ_LOG_LEVEL"
	EnvSnapshotDir = "RESQ_SNAPSHOT_DIR"
	EnvSeedFile    = "RESQ_SEED_FILE"
)

// Config is the runtime configuration of a session host.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`

	// SeedFile is an optional YAML file with the supplies shown before any thread exists.
	SeedFile string `yaml:"seed_file" json:"seed_file"`

	// SnapshotDir, when set, enables per-thread snapshot persistence.
	SnapshotDir string `yaml:"snapshot_dir" json:"snapshot_dir"`

	// DefaultCenter is where the map centers when the agent supplies no usable center.
	DefaultCenter [2]float64 `yaml:"default_center" json:"default_center"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:      "info",
		DefaultCenter: [2]float64{12.9716, 77.5946},
	}
}

// Load reads a YAML config file on top of the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, &errors.ConfigError{Err: fmt.Errorf("failed to parse %s: %w", path, err)}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvSnapshotDir); v != "" {
		c.SnapshotDir = v
	}
	if v := os.Getenv(EnvSeedFile); v != "" {
		c.SeedFile = v
	}
}

// Validate checks the struct tags of the configuration.
func (c Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		var sve *errors.SchemaValidationError
		if stdErrors.As(err, &sve) {
			return &errors.ConfigError{Field: sve.Field, Err: err}
		}
		return &errors.ConfigError{Err: err}
	}
	return nil
}

// SlogLevel maps LogLevel to a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
