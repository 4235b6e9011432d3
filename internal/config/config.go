// Package config loads the YAML configuration of the casgraph command
// line tools.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the on-disk configuration of a casgraph tool.
type Config struct {
	// Path is the data directory for the graph store.
	Path string `yaml:"path"`
	// Compression selects the stored-value compression:
	// "none", "zstd" or "xz".
	Compression string `yaml:"compression"`
	// LogLevel is one of "debug", "info", "warn" or "error".
	LogLevel string `yaml:"logLevel"`
}

// Load reads and validates the configuration file at path, filling in
// defaults for absent fields.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return config.withDefaults(), nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = "casgraph-data"
	}
	if c.Compression == "" {
		c.Compression = "zstd"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}
