package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all knobs of the report pipeline. Zero values are filled in
// by Default; Load layers a YAML file on top.
type Config struct {
	ModelPath        string  `yaml:"model_path"`
	Backend          string  `yaml:"backend"` // native or onnx
	OnnxMetadataPath string  `yaml:"onnx_metadata_path"`
	OutputDir        string  `yaml:"output_dir"`
	TemplatePath     string  `yaml:"template_path"`
	Alpha            float64 `yaml:"alpha"`
	Colormap         string  `yaml:"colormap"`
	RegionThreshold  float64 `yaml:"region_threshold"`
	DisplaySize      int     `yaml:"display_size"` // pixel width of report images
	ThumbnailWidth   int     `yaml:"thumbnail_width"`
	Workers          int     `yaml:"workers"`
	PDF              bool    `yaml:"pdf"`
	ChromeBin        string  `yaml:"chrome_bin"`
}

// Default returns the pipeline defaults.
func Default() *Config {
	return &Config{
		ModelPath:       "models/retina.json",
		Backend:         "native",
		OutputDir:       "output/reports",
		Alpha:           0.4,
		Colormap:        "jet",
		RegionThreshold: 0.6,
		DisplaySize:     448,
		ThumbnailWidth:  320,
		Workers:         2,
	}
}

// Load reads a YAML config over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the pipeline cannot work with.
func (c *Config) Validate() error {
	if c.Alpha < 0 || c.Alpha > 1 {
		return fmt.Errorf("config: alpha %.3f outside [0,1]", c.Alpha)
	}
	if c.RegionThreshold < 0 || c.RegionThreshold > 1 {
		return fmt.Errorf("config: region_threshold %.3f outside [0,1]", c.RegionThreshold)
	}
	if c.Backend != "native" && c.Backend != "onnx" {
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return nil
}
