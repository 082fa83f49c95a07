package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Paths contains commonly used file paths.
type Paths struct {
	Database string // Main SQLite database
	LogDir   string // Log file directory
	Export   string // Default export snapshot path
}

// GetPaths returns all commonly used paths based on config.
func GetPaths(cfg *Config) Paths {
	return Paths{
		Database: filepath.Join(cfg.BaseDir, "recall.db"),
		LogDir:   filepath.Join(cfg.BaseDir, "logs"),
		Export:   filepath.Join(cfg.BaseDir, "export.json"),
	}
}

// DefaultBaseDir returns the default base directory under the XDG data home
// (typically ~/.local/share/recall).
func DefaultBaseDir() string {
	return filepath.Join(xdg.DataHome, "recall")
}
