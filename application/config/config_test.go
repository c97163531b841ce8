package config

import (
	stdErrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/resq-ai/resq-core/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, [2]float64{12.9716, 77.5946}, cfg.DefaultCenter)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nsnapshot_dir: /tmp/a\ndefault_center: [1.5, 2.5]\n"), 0o600))

	t.Setenv(EnvSnapshotDir, "/tmp/b")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "/tmp/b", cfg.SnapshotDir)
	assert.Equal(t, [2]float64{1.5, 2.5}, cfg.DefaultCenter)
}

func TestLoad_InvalidLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "verbose")

	_, err := Load("")
	require.Error(t, err)

	var cfgErr *errors.ConfigError
	require.True(t, stdErrors.As(err, &cfgErr))
	assert.Equal(t, "log_level", cfgErr.Field)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestArgHelpers(t *testing.T) {
	args := Args{
		"title":   "Zone A",
		"zoom":    13.0,
		"limit":   5,
		"visible": true,
		"center":  []any{12.97, 77.59},
		"markers": []any{map[string]any{"lat": 1.0}},
	}

	s, ok := GetString(args, "title")
	assert.True(t, ok)
	assert.Equal(t, "Zone A", s)

	assert.Equal(t, 13.0, GetFloatDefault(args, "zoom", 1))
	assert.Equal(t, 5, GetIntDefault(args, "limit", 0))
	assert.Equal(t, 7, GetIntDefault(args, "missing", 7))
	assert.Equal(t, "fallback", GetStringDefault(args, "missing", "fallback"))

	b, ok := GetBool(args, "visible")
	assert.True(t, ok)
	assert.True(t, b)

	center, ok := GetFloatSlice(args, "center")
	require.True(t, ok)
	assert.Equal(t, []float64{12.97, 77.59}, center)

	markers, ok := GetObjects(args, "markers")
	require.True(t, ok)
	assert.Len(t, markers, 1)

	_, err := MustGetString(args, "threadId")
	require.Error(t, err)
	var sve *errors.SchemaValidationError
	require.True(t, stdErrors.As(err, &sve))
	assert.Equal(t, "threadId", sve.Field)
}
