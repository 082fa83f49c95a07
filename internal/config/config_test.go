package config

import (
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	base := t.TempDir()
	t.Setenv("RECALL_HOME", base)
	t.Setenv("RECALL_REMOTE_URL", "https://sync.example.com")
	t.Setenv("RECALL_DEBUG", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseDir != base {
		t.Errorf("BaseDir = %v, want %v", cfg.BaseDir, base)
	}
	if cfg.Remote.BaseURL != "https://sync.example.com" {
		t.Errorf("Remote.BaseURL = %v", cfg.Remote.BaseURL)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RECALL_HOME", filepath.Join(t.TempDir(), "recall"))
	t.Setenv("RECALL_REMOTE_URL", "")
	t.Setenv("RECALL_DEBUG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Remote.BaseURL != "" {
		t.Errorf("Remote.BaseURL = %v, want empty", cfg.Remote.BaseURL)
	}
	if cfg.Debug {
		t.Error("Debug = true, want false")
	}
}

func TestGetPaths(t *testing.T) {
	cfg := &Config{BaseDir: "/data/recall"}
	paths := GetPaths(cfg)
	if paths.Database != filepath.Join("/data/recall", "recall.db") {
		t.Errorf("Database = %v", paths.Database)
	}
	if paths.LogDir != filepath.Join("/data/recall", "logs") {
		t.Errorf("LogDir = %v", paths.LogDir)
	}
}
