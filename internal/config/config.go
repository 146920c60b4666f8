package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	CacheDir       string          `yaml:"cache_dir"`
	CollectionsDir string          `yaml:"collections_dir"`
	Workers        int             `yaml:"workers"`
	HTTP           HTTPConfig      `yaml:"http"`
	PageCache      PageCacheConfig `yaml:"page_cache"`
	Sources        SourcesConfig   `yaml:"sources"`
}

// HTTPConfig holds the network discipline for all scraping requests
type HTTPConfig struct {
	TimeoutSeconds       int `yaml:"timeout_seconds"`
	CourtesyDelaySeconds int `yaml:"courtesy_delay_seconds"`
	PacingDelaySeconds   int `yaml:"pacing_delay_seconds"`
	MaxAttempts          int `yaml:"max_attempts"`
	InitialBackoffMs     int `yaml:"initial_backoff_ms"`
}

// PageCacheConfig holds settings for the provider response cache
type PageCacheConfig struct {
	Backend    string `yaml:"backend"` // "memory", "sqlite" or "off"
	Path       string `yaml:"path"`    // sqlite database file
	TTLHours   int    `yaml:"ttl_hours"`
	MaxEntries int    `yaml:"max_entries"`
}

// SourcesConfig overrides the base URL of individual source sites.
// Empty fields keep the built-in defaults.
type SourcesConfig struct {
	ImpAwards    string `yaml:"impawards"`
	PosterDB     string `yaml:"posterdb"`
	CineMaterial string `yaml:"cinematerial"`
	Wikipedia    string `yaml:"wikipedia"`
	YouTube      string `yaml:"youtube"`
	TasteDive    string `yaml:"tastedive"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration rooted under the user's home directory,
// used when no config file exists.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	base := filepath.Join(home, ".cinelog")

	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(base, "cache")
	} else if c.CacheDir, err = expandHome(c.CacheDir); err != nil {
		return err
	}
	if c.CollectionsDir == "" {
		c.CollectionsDir = filepath.Join(base, "collections")
	} else if c.CollectionsDir, err = expandHome(c.CollectionsDir); err != nil {
		return err
	}

	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		c.HTTP.TimeoutSeconds = 10
	}
	if c.HTTP.CourtesyDelaySeconds <= 0 {
		c.HTTP.CourtesyDelaySeconds = 3
	}
	if c.HTTP.PacingDelaySeconds <= 0 {
		c.HTTP.PacingDelaySeconds = 1
	}
	if c.HTTP.MaxAttempts <= 0 {
		c.HTTP.MaxAttempts = 2
	}
	if c.HTTP.InitialBackoffMs <= 0 {
		c.HTTP.InitialBackoffMs = 1000
	}

	if c.PageCache.Backend == "" {
		c.PageCache.Backend = "memory"
	}
	if c.PageCache.Path == "" {
		c.PageCache.Path = filepath.Join(base, "pages.db")
	} else if c.PageCache.Path, err = expandHome(c.PageCache.Path); err != nil {
		return err
	}
	if c.PageCache.TTLHours <= 0 {
		c.PageCache.TTLHours = 24
	}
	if c.PageCache.MaxEntries <= 0 {
		c.PageCache.MaxEntries = 256
	}
	return nil
}

func (c *Config) validate() error {
	switch c.PageCache.Backend {
	case "memory", "sqlite", "off":
	default:
		return fmt.Errorf("unknown page_cache backend %q (want memory, sqlite or off)", c.PageCache.Backend)
	}
	return nil
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
