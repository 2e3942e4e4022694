// Package config loads the exercises configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/elizafairlady/exercises/exercise/switcher"
	"github.com/elizafairlady/exercises/ui/theme"
)

// ErrInvalid is wrapped by every Validate error.
var ErrInvalid = errors.New("invalid config")

// Config is the top-level configuration.
type Config struct {
	// Title is the window title.
	Title string `yaml:"title"`
	// Header is the heading above the exercise selector.
	Header string `yaml:"header"`
	// Start is the exercise shown first: counter or todo.
	Start string `yaml:"start"`
	// Listen is a 9P address; empty disables the server.
	Listen string `yaml:"listen"`
	// Theme overrides color roles, e.g. focus: "#FF8800".
	Theme map[string]string `yaml:"theme"`
	Log   Log               `yaml:"log"`
}

// Log configures logging.
type Log struct {
	// File receives log output; empty discards it.
	File   string `yaml:"file"`
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Title:  switcher.DefaultTitle,
		Header: switcher.DefaultHeader,
		Start:  "counter",
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := switcher.ParseChoice(c.Start); err != nil {
		return fmt.Errorf("%w: start %q", ErrInvalid, c.Start)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Log.Format)
	}
	if err := theme.Default().Apply(c.Theme); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// NewTheme returns the default theme with the configured overrides.
func (c *Config) NewTheme() (*theme.Theme, error) {
	th := theme.Default()
	if err := th.Apply(c.Theme); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return th, nil
}

// StartChoice returns the configured first exercise.
func (c *Config) StartChoice() switcher.Choice {
	ch, err := switcher.ParseChoice(c.Start)
	if err != nil {
		return switcher.Counter
	}
	return ch
}
