// ABOUTME: Focus configuration management with backend selection.
// ABOUTME: Merges config.json, .env, and FOCUS_* variables; builds storage and analysis options.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/harperreed/focus/internal/analysis"
	"github.com/harperreed/focus/internal/charm"
	"github.com/harperreed/focus/internal/storage"
)

// Config stores focus tool configuration. Zero values fall back to the
// analysis defaults.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "charm".
	Backend string `json:"backend,omitempty" env:"FOCUS_BACKEND"`

	// DataDir is the root directory for data storage. SQLite puts focus.db
	// here. Supports ~ expansion. Defaults to ~/.local/share/focus.
	DataDir string `json:"data_dir,omitempty" env:"FOCUS_DATA_DIR"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" env:"FOCUS_LOG_LEVEL"`

	// Seed is nil when unset; zero is a valid seed.
	Seed         *int64  `json:"seed,omitempty" env:"FOCUS_SEED"`
	TestFraction float64 `json:"test_fraction,omitempty" env:"FOCUS_TEST_FRACTION"`
	Folds        int     `json:"folds,omitempty" env:"FOCUS_FOLDS"`
	Trees        int     `json:"trees,omitempty" env:"FOCUS_TREES"`
	MaxDepth     int     `json:"max_depth,omitempty" env:"FOCUS_MAX_DEPTH"`
	Neighbors    int     `json:"neighbors,omitempty" env:"FOCUS_NEIGHBORS"`
	RidgeAlpha   float64 `json:"ridge_alpha,omitempty" env:"FOCUS_RIDGE_ALPHA"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetLogLevel parses LogLevel, defaulting to info.
func (c *Config) GetLogLevel() (log.Level, error) {
	if c.LogLevel == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// AnalysisOptions overlays the configured values on analysis.DefaultOptions.
func (c *Config) AnalysisOptions() analysis.Options {
	opts := analysis.DefaultOptions()
	if c.Seed != nil {
		opts.Seed = *c.Seed
	}
	if c.TestFraction > 0 {
		opts.TestFraction = c.TestFraction
	}
	if c.Folds > 0 {
		opts.Folds = c.Folds
	}
	if c.Trees > 0 {
		opts.Trees = c.Trees
	}
	if c.MaxDepth > 0 {
		opts.MaxDepth = c.MaxDepth
	}
	if c.Neighbors > 0 {
		opts.Neighbors = c.Neighbors
	}
	if c.RidgeAlpha > 0 {
		opts.RidgeAlpha = c.RidgeAlpha
	}
	return opts
}

// Validate rejects values the analysis cannot run with.
func (c *Config) Validate() error {
	switch c.GetBackend() {
	case "sqlite", "charm":
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}
	if c.TestFraction < 0 || c.TestFraction >= 1 {
		return fmt.Errorf("test_fraction must be in [0, 1), got %g", c.TestFraction)
	}
	if c.Folds < 0 || c.Trees < 0 || c.MaxDepth < 0 || c.Neighbors < 0 || c.RidgeAlpha < 0 {
		return fmt.Errorf("folds, trees, max_depth, neighbors and ridge_alpha must not be negative")
	}
	if _, err := c.GetLogLevel(); err != nil {
		return err
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	switch c.GetBackend() {
	case "sqlite":
		return storage.Open(filepath.Join(c.GetDataDir(), "focus.db"))
	case "charm":
		client, err := charm.InitClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.Backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "focus", "config.json")
}

// Load reads config.json, then lets a .env file in the working directory
// and FOCUS_* environment variables override it.
func Load() (*Config, error) {
	cfg, err := LoadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}

	// A missing .env is fine; existing variables win over the file.
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse FOCUS_* environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a JSON config file. A missing file yields an empty config.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
