package api

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds the remote API configuration.
type Config struct {
	// BaseURL is the API root, e.g. "http://127.0.0.1:8000".
	BaseURL string `yaml:"base_url"`

	// Timeout bounds a single HTTP attempt. Default: 10s.
	Timeout time.Duration `yaml:"timeout"`

	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://127.0.0.1:8000",
		Timeout: 10 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// ApplyEnv overrides fields from WSE_SERVER and WSE_API_TIMEOUT.
func (c *Config) ApplyEnv() error {
	if u := os.Getenv("WSE_SERVER"); u != "" {
		c.BaseURL = u
	}
	if t := os.Getenv("WSE_API_TIMEOUT"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return fmt.Errorf("WSE_API_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks the base URL and timing values.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("api base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base_url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api base_url %q: missing host", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", c.Timeout)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("api retry max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
