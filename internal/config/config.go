package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable paths, render settings and server settings.
type Config struct {
	// Paths
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	DBPath    string `yaml:"db_path"`
	LogPath   string `yaml:"log_path"`

	// Render settings
	RenderSize  int     `yaml:"render_size"`
	Supersample int     `yaml:"supersample"`
	Yaw         float64 `yaml:"yaw"`
	Pitch       float64 `yaml:"pitch"`
	Workers     int     `yaml:"workers"`

	// Server settings
	ListenAddr string `yaml:"listen_addr"`
}

// Load reads a YAML config file. Fields not set in the file keep their
// zero values; Resolve fills those in afterwards.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	InputDir   string
	OutputDir  string
	DBPath     string
	Workers    int
	ListenAddr string
}

// Resolve fills empty fields with defaults. CLI flags take priority when
// non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.DBPath != "" {
		c.DBPath = flags.DBPath
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.ListenAddr != "" {
		c.ListenAddr = flags.ListenAddr
	}

	if c.InputDir == "" {
		c.InputDir = "."
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.InputDir, "renders")
	} else if !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(c.InputDir, c.OutputDir)
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.OutputDir, "catalog.db")
	}

	if c.RenderSize <= 0 {
		c.RenderSize = 512
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Yaw == 0 && c.Pitch == 0 {
		c.Yaw = 30
		c.Pitch = -25
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
}
