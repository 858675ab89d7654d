package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Analysis.Classes || !cfg.Analysis.Methods || !cfg.Analysis.Packages || !cfg.Analysis.Assets {
		t.Error("all analyses should default on")
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != 24 {
		t.Errorf("cache defaults = %+v", cfg.Cache)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("format = %q", cfg.Output.Format)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, ".winnow.yaml", `
analysis:
  methods: false
  keep_alive:
    - onPush
    - fromJson
exclude:
  patterns:
    - "*.g.dart"
workers: 4
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.Methods {
		t.Error("methods should be disabled")
	}
	if !cfg.Analysis.Classes {
		t.Error("unset fields keep their defaults")
	}
	if len(cfg.Analysis.KeepAlive) != 2 || cfg.Analysis.KeepAlive[0] != "onPush" {
		t.Errorf("keep_alive = %v", cfg.Analysis.KeepAlive)
	}
	if len(cfg.Exclude.Patterns) != 1 || cfg.Exclude.Patterns[0] != "*.g.dart" {
		t.Errorf("patterns = %v", cfg.Exclude.Patterns)
	}
	if cfg.Workers != 4 {
		t.Errorf("workers = %d", cfg.Workers)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, ".winnow.toml", `
workers = 2

[cache]
enabled = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 2 || cfg.Cache.Enabled {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, ".winnow.json", `{"output": {"format": "json", "color": false}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.Format != "json" || cfg.Output.Color {
		t.Errorf("output = %+v", cfg.Output)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadOrDefaultFindsProjectConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".winnow.yaml")
	if err := os.WriteFile(path, []byte("workers: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := LoadOrDefault(dir)
	if cfg.Workers != 7 {
		t.Errorf("workers = %d, want 7", cfg.Workers)
	}
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	cfg := LoadOrDefault(t.TempDir())
	if cfg.Workers != 0 || !cfg.Analysis.Classes {
		t.Errorf("cfg = %+v", cfg)
	}
}
