// Package config provides configuration loading and validation for tapmatch.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults applied by ApplyDefaults when a field is unset.
const (
	DefaultPort          = 8080
	DefaultDataDir       = "data"
	DefaultCacheBackend  = "badger"
	DefaultCacheTTL      = 7 * 24 * time.Hour
	DefaultFetchTimeout  = 15 * time.Second
	DefaultWatchInterval = 30 * time.Second
)

// Config represents the application configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or are
// filled from environment variables.
type Config struct {
	// Server
	Port int `json:"port,omitempty" validate:"omitempty,gte=1,lte=65535"`

	// Paths
	DataDir           string `json:"data_dir,omitempty"`            // Base data directory
	ProfilesDir       string `json:"profiles_dir,omitempty"`        // One JSON file per profile
	VenuesCSV         string `json:"venues_csv,omitempty"`          // Primary venue table
	VenuesFallbackCSV string `json:"venues_fallback_csv,omitempty"` // Sample table used when primary is missing
	MenusDir          string `json:"menus_dir,omitempty"`           // Local static menu files
	CacheDir          string `json:"cache_dir,omitempty"`           // Badger store directory

	// Beer cache
	CacheBackend  string `json:"cache_backend,omitempty" validate:"omitempty,oneof=badger postgres memory"`
	DatabaseURL   string `json:"database_url,omitempty"` // Required for the postgres backend
	CacheTTLHours int    `json:"cache_ttl_hours,omitempty" validate:"omitempty,gte=1"`

	// Fetching
	FetchTimeoutSeconds int    `json:"fetch_timeout_seconds,omitempty" validate:"omitempty,gte=1"`
	UseBrowser          bool   `json:"use_browser,omitempty"`       // Render JS-heavy pages with a headless browser
	BeerURLTemplate     string `json:"beer_url_template,omitempty"` // %s is the URL-escaped beer name

	// Location index
	WatchIntervalSeconds int `json:"watch_interval_seconds,omitempty" validate:"omitempty,gte=1"`

	// Matching component weights; zero values fall back to matching.DefaultWeights.
	MatchWeights map[string]float64 `json:"match_weights,omitempty" validate:"omitempty,dive,gte=0"`

	// Behavior
	APIKey  string `json:"api_key,omitempty"` // Gemini API key for LLM flavor extraction
	Verbose bool   `json:"verbose,omitempty"`
}

// Load loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills unset fields from environment variables. godotenv is loaded
// by main before this runs, so a local .env file is honored.
func (c *Config) FromEnv() {
	if c.Port == 0 {
		if p, err := strconv.Atoi(os.Getenv("TAPMATCH_PORT")); err == nil {
			c.Port = p
		}
	}
	if c.DataDir == "" {
		c.DataDir = os.Getenv("TAPMATCH_DATA_DIR")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.CacheBackend == "" {
		c.CacheBackend = os.Getenv("TAPMATCH_CACHE_BACKEND")
	}
}

// ApplyDefaults fills remaining unset fields with defaults. Path fields
// default relative to DataDir, mirroring the layout of the data directory.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.ProfilesDir == "" {
		c.ProfilesDir = filepath.Join(c.DataDir, "profiles")
	}
	if c.VenuesCSV == "" {
		c.VenuesCSV = filepath.Join(c.DataDir, "breweries.csv")
	}
	if c.VenuesFallbackCSV == "" {
		c.VenuesFallbackCSV = filepath.Join(c.DataDir, "breweries_sample.csv")
	}
	if c.MenusDir == "" {
		c.MenusDir = filepath.Join(c.DataDir, "menus")
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(c.DataDir, "beercache")
	}
	if c.CacheBackend == "" {
		c.CacheBackend = DefaultCacheBackend
	}
	if c.CacheTTLHours == 0 {
		c.CacheTTLHours = int(DefaultCacheTTL / time.Hour)
	}
	if c.FetchTimeoutSeconds == 0 {
		c.FetchTimeoutSeconds = int(DefaultFetchTimeout / time.Second)
	}
	if c.WatchIntervalSeconds == 0 {
		c.WatchIntervalSeconds = int(DefaultWatchInterval / time.Second)
	}
}

// CacheTTL returns the configured cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// FetchTimeout returns the configured fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// WatchInterval returns the venue-table poll interval as a duration.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.WatchIntervalSeconds) * time.Second
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.CacheBackend == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required when cache_backend is postgres")
	}

	return nil
}
