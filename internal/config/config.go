// Package config carries Kokoki's compile-time constants and the
// optional kokoki.yaml runtime configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level kokoki.yaml configuration. Every field
// is optional; the zero value is a fully working default.
type Config struct {
	// Color selects terminal color usage: "auto" (default), "always"
	// or "never".
	Color string `yaml:"color,omitempty"`

	// Prompt overrides the REPL prompt format. A single %d expands to
	// the current stack depth.
	Prompt string `yaml:"prompt,omitempty"`

	// Preload lists source files evaluated before the REPL or the
	// script given on the command line.
	Preload []string `yaml:"preload,omitempty"`

	// HistoryPath is the sqlite database the REPL appends lines to.
	// Empty disables history.
	HistoryPath string `yaml:"history_path,omitempty"`

	// HistoryLimit caps how many rows history recall prints.
	HistoryLimit int `yaml:"history_limit,omitempty"`
}

// Load reads the first config file found, checking $KOKOKI_CONFIG, then
// ./kokoki.yaml, then ~/.config/kokoki/config.yaml. A missing file is
// not an error; the defaults are returned.
func Load() (*Config, error) {
	path := findConfig()
	if path == "" {
		cfg := &Config{}
		cfg.setDefaults()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile reads and parses one kokoki.yaml file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses kokoki.yaml content from bytes. The path argument is used
// only for error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

func findConfig() string {
	if path := os.Getenv("KOKOKI_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat("kokoki.yaml"); err == nil {
		return "kokoki.yaml"
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".config", "kokoki", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func (c *Config) validate(path string) error {
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("%s: color must be auto, always or never, got %q", path, c.Color)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("%s: history_limit must not be negative", path)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Color == "" {
		c.Color = "auto"
	}
	if c.Prompt == "" {
		c.Prompt = PromptFormat
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
}
