package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"VTIMELINE_DB", "VTIMELINE_LOG_LEVEL", "VTIMELINE_SNAP_TOLERANCE",
		"VTIMELINE_HISTORY_LIMIT", "VTIMELINE_TRIM_THROTTLE", "VTIMELINE_DRIFT_TOLERANCE",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultsAreValid(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Editing.SnapTolerance)
	assert.Equal(t, 50, cfg.Editing.HistoryLimit)
	assert.Equal(t, 100*time.Millisecond, cfg.Editing.TrimThrottle)
	assert.Equal(t, 0.1, cfg.Playback.DriftTolerance)
	assert.Equal(t, []string{"defaults"}, cfg.LoadedFrom)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "vtimeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /tmp/projects.db
log_level: debug
editing:
  snap_tolerance: 5
  trim_throttle: 250ms
playback:
  refresh_interval: 8ms
`), 0o644))
	t.Setenv("VTIMELINE_HISTORY_LIMIT", "20")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/projects.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5, cfg.Editing.SnapTolerance)
	assert.Equal(t, 250*time.Millisecond, cfg.Editing.TrimThrottle)
	assert.Equal(t, 8*time.Millisecond, cfg.Playback.RefreshInterval)
	assert.Equal(t, 20, cfg.Editing.HistoryLimit)
	assert.Equal(t, 100.0, cfg.Editing.PixelsPerSecond, "unset keys keep defaults")
	assert.Equal(t, []string{"defaults", path, "environment"}, cfg.LoadedFrom)
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("VTIMELINE_LOG_LEVEL", "chatty")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
