// Package yaml loads the optional portdex configuration file.
package yaml

import (
	"os"
	"time"

	"github.com/portdex/portdex"
	"gopkg.in/yaml.v3"
)

// Config holds the resolved configuration. Flags override these values;
// zero values mean "use the default".
type Config struct {
	CacheDir      string
	MaxAge        time.Duration
	SourceURL     string
	HistoryAPIURL string
	NoColor       bool
}

// fileConfig is the on-disk YAML shape. Durations are strings in Go
// duration syntax (e.g. "168h").
type fileConfig struct {
	CacheDir      string `yaml:"cache_dir"`
	MaxAge        string `yaml:"max_age"`
	SourceURL     string `yaml:"source_url"`
	HistoryAPIURL string `yaml:"history_api_url"`
	NoColor       bool   `yaml:"no_color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxAge:        portdex.DefaultMaxAge,
		SourceURL:     portdex.DefaultPageURL,
		HistoryAPIURL: portdex.DefaultHistoryAPIURL,
	}
}

// Load reads a config file and merges it over the defaults. A missing file
// returns ENOTFOUND so callers can fall back to Default; malformed content
// returns EINVALID.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, portdex.Errorf(portdex.ENOTFOUND, "config file not readable at %s: %v", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, portdex.Errorf(portdex.EINVALID, "malformed config file %s: %v", path, err)
	}

	cfg := Default()
	if fc.CacheDir != "" {
		cfg.CacheDir = fc.CacheDir
	}
	if fc.MaxAge != "" {
		d, err := time.ParseDuration(fc.MaxAge)
		if err != nil {
			return nil, portdex.Errorf(portdex.EINVALID, "invalid max_age %q in %s: %v", fc.MaxAge, path, err)
		}
		cfg.MaxAge = d
	}
	if fc.SourceURL != "" {
		cfg.SourceURL = fc.SourceURL
	}
	if fc.HistoryAPIURL != "" {
		cfg.HistoryAPIURL = fc.HistoryAPIURL
	}
	cfg.NoColor = fc.NoColor

	return cfg, nil
}
