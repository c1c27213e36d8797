// Package config loads vtimeline settings from defaults, an optional YAML
// file and VTIMELINE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all settings.
type Config struct {
	DBPath   string         `yaml:"db_path" validate:"required"`
	LogLevel string         `yaml:"log_level" validate:"oneof=debug info warn error"`
	Editing  EditingConfig  `yaml:"editing"`
	Playback PlaybackConfig `yaml:"playback"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-"`
}

// EditingConfig tunes the editing session.
type EditingConfig struct {
	SnapTolerance   int           `yaml:"snap_tolerance" validate:"gte=0,lte=30"`
	HistoryLimit    int           `yaml:"history_limit" validate:"gte=2,lte=1000"`
	TrimThrottle    time.Duration `yaml:"trim_throttle" validate:"gte=0"`
	PixelsPerSecond float64       `yaml:"pixels_per_second" validate:"gt=0"`
}

// PlaybackConfig tunes the engine.
type PlaybackConfig struct {
	// DriftTolerance is in seconds.
	DriftTolerance  float64       `yaml:"drift_tolerance" validate:"gt=0,lte=1"`
	RefreshInterval time.Duration `yaml:"refresh_interval" validate:"gt=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:   defaultDBPath(),
		LogLevel: "warn",
		Editing: EditingConfig{
			SnapTolerance:   3,
			HistoryLimit:    50,
			TrimThrottle:    100 * time.Millisecond,
			PixelsPerSecond: 100,
		},
		Playback: PlaybackConfig{
			DriftTolerance:  0.1,
			RefreshInterval: time.Second / 60,
		},
	}
}

func defaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".vtimeline", "projects.db")
}

// Load builds the configuration. An empty path skips the file layer; a
// path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.LoadedFrom = []string{"defaults"}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
		cfg.LoadedFrom = append(cfg.LoadedFrom, path)
	}

	if cfg.loadEnv() {
		cfg.LoadedFrom = append(cfg.LoadedFrom, "environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays environment variables and reports whether any was set.
func (c *Config) loadEnv() bool {
	applied := false
	if v := os.Getenv("VTIMELINE_DB"); v != "" {
		c.DBPath = v
		applied = true
	}
	if v := os.Getenv("VTIMELINE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
		applied = true
	}
	if v, ok := getEnvInt("VTIMELINE_SNAP_TOLERANCE"); ok {
		c.Editing.SnapTolerance = v
		applied = true
	}
	if v, ok := getEnvInt("VTIMELINE_HISTORY_LIMIT"); ok {
		c.Editing.HistoryLimit = v
		applied = true
	}
	if v, ok := getEnvDuration("VTIMELINE_TRIM_THROTTLE"); ok {
		c.Editing.TrimThrottle = v
		applied = true
	}
	if v, ok := getEnvFloat("VTIMELINE_DRIFT_TOLERANCE"); ok {
		c.Playback.DriftTolerance = v
		applied = true
	}
	return applied
}

var validate = validator.New()

// Validate checks every field constraint.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %w", err)
}

func getEnvInt(key string) (int, bool) {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getEnvFloat(key string) (float64, bool) {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func getEnvDuration(key string) (time.Duration, bool) {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d, true
		}
	}
	return 0, false
}
