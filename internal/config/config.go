// Package config provides TOML configuration loading for the PawTrail core.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/hylee/pawtrail/internal/errors"
)

// Config represents the application configuration.
type Config struct {
	DataDir string        `toml:"data_dir"`
	Remote  RemoteConfig  `toml:"remote"`
	Sync    SyncConfig    `toml:"sync"`
	Logging LoggingConfig `toml:"logging"`
}

// RemoteConfig holds backend client settings.
type RemoteConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the HTTP timeout as a duration.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// SyncConfig holds background sync settings.
type SyncConfig struct {
	IntervalMinutes int `toml:"interval_minutes"`
}

// Interval returns the sync interval as a duration.
func (s SyncConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "data",
		Remote: RemoteConfig{
			BaseURL:        "https://api.pawtrail.app",
			TimeoutSeconds: 30,
		},
		Sync: SyncConfig{
			IntervalMinutes: 15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadFromFile loads configuration from a TOML file, overlaying defaults.
// A missing file yields the defaults unchanged.
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfigInvalid,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return apperrors.New(apperrors.ErrConfigInvalid, "data_dir must not be empty")
	}
	if c.Remote.BaseURL == "" {
		return apperrors.New(apperrors.ErrConfigInvalid, "remote.base_url must not be empty")
	}
	if c.Remote.TimeoutSeconds <= 0 {
		return apperrors.New(apperrors.ErrConfigInvalid, "remote.timeout_seconds must be positive")
	}
	if c.Sync.IntervalMinutes <= 0 {
		return apperrors.New(apperrors.ErrConfigInvalid, "sync.interval_minutes must be positive")
	}
	return nil
}
