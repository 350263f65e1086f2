// Package config loads the nps-places settings from defaults, an optional
// YAML file, a .env file and the environment, in increasing precedence.
// Command-line flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFile = "nps-places.yaml"

	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	EnvAPIKey       = "MAPQUEST_API_KEY"
	EnvCacheFile    = "NPS_CACHE_FILE"
	EnvCacheBackend = "NPS_CACHE_BACKEND"
	EnvLogLevel     = "NPS_LOG_LEVEL"
)

// Config holds the application configuration.
type Config struct {
	Cache  CacheConfig  `yaml:"cache"`
	Sites  SitesConfig  `yaml:"sites"`
	Places PlacesConfig `yaml:"places"`
	HTTP   HTTPConfig   `yaml:"http"`
	Log    LogConfig    `yaml:"log"`
}

// CacheConfig selects where responses are cached.
type CacheConfig struct {
	File    string `yaml:"file"`
	Backend string `yaml:"backend"` // "json" or "sqlite"
	Session bool   `yaml:"session"` // keep the store in memory for the run
}

// SitesConfig points at the parks website.
type SitesConfig struct {
	BaseURL string `yaml:"base_url"`
}

// PlacesConfig holds the radius search settings.
type PlacesConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Radius     int    `yaml:"radius"`
	MaxMatches int    `yaml:"max_matches"`
}

// HTTPConfig holds HTTP request settings.
type HTTPConfig struct {
	Timeout   Duration `yaml:"timeout"`
	UserAgent string   `yaml:"user_agent"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Duration is a time.Duration written as "30s" in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			File:    "national_parks_cache.json",
			Backend: BackendJSON,
		},
		Sites: SitesConfig{
			BaseURL: "https://www.nps.gov",
		},
		Places: PlacesConfig{
			BaseURL:    "http://www.mapquestapi.com/search/v2/radius",
			Radius:     10,
			MaxMatches: 10,
		},
		HTTP: HTTPConfig{
			Timeout:   Duration(30 * time.Second),
			UserAgent: "nps-places-cli/1.0",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load builds the configuration. An empty path tries DefaultFile and skips it
// when missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// defaults only
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files (default ".env").
// Missing files are ignored and existing variables are never overridden.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Places.APIKey = v
	}
	if v := os.Getenv(EnvCacheFile); v != "" {
		c.Cache.File = v
	}
	if v := os.Getenv(EnvCacheBackend); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the settings that cannot be defaulted. The API key is only
// required once a places lookup runs, so it is not checked here.
func (c *Config) Validate() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	switch c.Cache.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("invalid cache backend: %q (must be 'json' or 'sqlite')", c.Cache.Backend)
	}

	if c.Cache.File == "" {
		return fmt.Errorf("cache file is required")
	}
	if c.Sites.BaseURL == "" {
		return fmt.Errorf("sites base_url is required")
	}
	if c.Places.BaseURL == "" {
		return fmt.Errorf("places base_url is required")
	}
	if c.Places.Radius <= 0 {
		return fmt.Errorf("places radius must be positive, got %d", c.Places.Radius)
	}
	if c.Places.MaxMatches <= 0 {
		return fmt.Errorf("places max_matches must be positive, got %d", c.Places.MaxMatches)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	return nil
}
