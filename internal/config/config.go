// Package config loads the client configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/wselearn/wse/internal/api"
	"github.com/wselearn/wse/internal/exercise"
)

// Config is the full client configuration.
type Config struct {
	API      api.Config         `yaml:"api"`
	Exercise ExerciseConfig     `yaml:"exercise"`
	Database DatabaseConfig     `yaml:"database"`
	Variants []exercise.Variant `yaml:"variants"`
}

// ExerciseConfig tunes the exercise and list screens.
type ExerciseConfig struct {
	// Delay is how long a question or answer stays up. Default: 5s.
	Delay time.Duration `yaml:"delay"`

	// PageSize is the number of rows per list page. Default: 10.
	PageSize int `yaml:"page_size"`
}

// DatabaseConfig locates the local SQLite file. An empty path means the
// store's default location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Default returns a Config with sensible defaults and both built-in
// variants.
func Default() *Config {
	return &Config{
		API: api.DefaultConfig(),
		Exercise: ExerciseConfig{
			Delay:    exercise.DefaultDelay,
			PageSize: 10,
		},
		Variants: []exercise.Variant{exercise.ForeignWords(), exercise.GlossaryTerms()},
	}
}

// DefaultPath resolves the config file path in priority order:
// 1. WSE_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/wse/config.yaml
// 3. ~/.config/wse/config.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv("WSE_CONFIG"); p != "" {
		return p, nil
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "wse", "config.yaml"), nil
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	for i, v := range cfg.Variants {
		cfg.Variants[i] = v.WithDefaults()
	}
	return cfg, nil
}

// ApplyEnv overrides fields from WSE_SERVER, WSE_API_TIMEOUT,
// WSE_EXERCISE_DELAY and WSE_DB.
func (c *Config) ApplyEnv() error {
	if err := c.API.ApplyEnv(); err != nil {
		return err
	}
	if d := os.Getenv("WSE_EXERCISE_DELAY"); d != "" {
		delay, err := time.ParseDuration(d)
		if err != nil {
			return fmt.Errorf("WSE_EXERCISE_DELAY: %w", err)
		}
		c.Exercise.Delay = delay
	}
	if p := os.Getenv("WSE_DB"); p != "" {
		c.Database.Path = p
	}
	return nil
}

// Save writes the config to path as YAML, creating the directory.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs *multierror.Error
	if err := c.API.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if c.Exercise.Delay <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("exercise delay must be positive, got %s", c.Exercise.Delay))
	}
	if c.Exercise.PageSize < 1 {
		errs = multierror.Append(errs, fmt.Errorf("exercise page_size must be at least 1, got %d", c.Exercise.PageSize))
	}
	if len(c.Variants) == 0 {
		errs = multierror.Append(errs, errors.New("at least one variant is required"))
	}

	seen := make(map[string]bool)
	for i, v := range c.Variants {
		if v.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("variant %d: name is required", i))
			continue
		}
		if seen[v.Name] {
			errs = multierror.Append(errs, fmt.Errorf("variant %q: duplicate name", v.Name))
		}
		seen[v.Name] = true
		if v.ExercisePath == "" || v.ProgressPath == "" || v.ItemsPath == "" {
			errs = multierror.Append(errs, fmt.Errorf("variant %q: exercise, progress and items paths are required", v.Name))
		}
		if len(v.ListColumns) < 2 {
			errs = multierror.Append(errs, fmt.Errorf("variant %q: list_columns needs a question and an answer column", v.Name))
		}
	}
	return errs.ErrorOrNil()
}

// Variant returns the variant with the given name.
func (c *Config) Variant(name string) (exercise.Variant, bool) {
	for _, v := range c.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return exercise.Variant{}, false
}
