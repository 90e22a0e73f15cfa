package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Backend != "native" {
		t.Errorf("Backend = %q, want native", cfg.Backend)
	}
	if cfg.Alpha != 0.4 {
		t.Errorf("Alpha = %v, want 0.4", cfg.Alpha)
	}
	if cfg.Colormap != "jet" {
		t.Errorf("Colormap = %q, want jet", cfg.Colormap)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults do not validate: %v", err)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OutputDir != "output/reports" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "backend: onnx\nmodel_path: models/retina.onnx\nalpha: 0.6\nworkers: 8\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != "onnx" {
		t.Errorf("Backend = %q, want onnx", cfg.Backend)
	}
	if cfg.ModelPath != "models/retina.onnx" {
		t.Errorf("ModelPath = %q", cfg.ModelPath)
	}
	if cfg.Alpha != 0.6 {
		t.Errorf("Alpha = %v, want 0.6", cfg.Alpha)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	// Untouched keys keep their defaults.
	if cfg.Colormap != "jet" {
		t.Errorf("Colormap = %q, want jet", cfg.Colormap)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("alpha: [not a number\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"alpha too high", func(c *Config) { c.Alpha = 1.5 }, true},
		{"alpha negative", func(c *Config) { c.Alpha = -0.1 }, true},
		{"threshold too high", func(c *Config) { c.RegionThreshold = 2 }, true},
		{"unknown backend", func(c *Config) { c.Backend = "torch" }, true},
		{"onnx backend", func(c *Config) { c.Backend = "onnx" }, false},
		{"alpha bounds", func(c *Config) { c.Alpha = 1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestValidateClampsWorkers(t *testing.T) {
	cfg := Default()
	cfg.Workers = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Workers)
	}
}
