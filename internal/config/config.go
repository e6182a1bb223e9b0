package config

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"gopkg.in/yaml.v2"

	"pdfpress/internal/common"
	"pdfpress/internal/compression"
)

// Config holds application configuration
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Storage struct {
		Dir            string `yaml:"dir"`
		RetentionHours int    `yaml:"retention_hours"`
		DatabasePath   string `yaml:"database_path"`
	} `yaml:"storage"`

	Compression struct {
		GhostscriptPath string              `yaml:"ghostscript_path"`
		DefaultLevel    string              `yaml:"default_level"`
		Workers         int                 `yaml:"workers"`
		Options         compression.Options `yaml:"options"`
	} `yaml:"compression"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8001
	cfg.Storage.Dir = "./storage"
	cfg.Storage.RetentionHours = 1
	cfg.Storage.DatabasePath = "pdfpress.sqlite3"
	cfg.Compression.DefaultLevel = common.DefaultCompressionLevel
	cfg.Compression.Options = compression.DefaultOptions()
	return cfg
}

// Load reads the YAML config at path on top of the defaults, then applies
// environment overrides. A missing file is not an error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		dec := yaml.NewDecoder(file)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if dir := os.Getenv("STORAGE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if hours := os.Getenv("FILE_RETENTION_HOURS"); hours != "" {
		if n, err := strconv.Atoi(hours); err == nil {
			c.Storage.RetentionHours = n
		}
	}
	if gs := os.Getenv("PDFPRESS_GS"); gs != "" {
		c.Compression.GhostscriptPath = gs
	}
}

// ResolveGhostscript resolves the Ghostscript executable once at startup: an
// explicitly configured path wins, otherwise PATH is searched. Failing fast
// here keeps a missing tool from surfacing lazily at the first compression.
func (c *Config) ResolveGhostscript() error {
	if c.Compression.GhostscriptPath != "" {
		if _, err := os.Stat(c.Compression.GhostscriptPath); err != nil {
			return fmt.Errorf("configured ghostscript path %s: %w", c.Compression.GhostscriptPath, compression.ErrGhostscriptNotFound)
		}
		return nil
	}

	path, err := exec.LookPath("gs")
	if err != nil {
		return compression.ErrGhostscriptNotFound
	}
	c.Compression.GhostscriptPath = path
	return nil
}
