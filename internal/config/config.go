// Package config handles application configuration management.
package config

import (
	"os"
)

// Config holds all application configuration.
type Config struct {
	// Base directory for all Recall data (~/.recall)
	BaseDir string

	// Remote replica settings
	Remote RemoteConfig

	// Store debug logging (SQL echo)
	Debug bool
}

// RemoteConfig holds the remote replica endpoint settings.
type RemoteConfig struct {
	// BaseURL of the remote replica; empty disables sync commands.
	BaseURL string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseDir: DefaultBaseDir(),
	}
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if dir := os.Getenv("RECALL_HOME"); dir != "" {
		cfg.BaseDir = dir
	}
	if u := os.Getenv("RECALL_REMOTE_URL"); u != "" {
		cfg.Remote.BaseURL = u
	}
	if os.Getenv("RECALL_DEBUG") != "" {
		cfg.Debug = true
	}

	if err := os.MkdirAll(cfg.BaseDir, 0755); err != nil {
		return nil, err
	}
	return cfg, nil
}
