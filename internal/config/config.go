// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath       string        `env:"DATABASE_PATH"`
	ModelPath          string        `env:"MODEL_PATH"`
	ModelMinConfidence float64       `env:"MODEL_MIN_CONFIDENCE" envDefault:"0.6"`
	UserID             string        `env:"USER_ID" envDefault:"default"`
	WindowDays         int           `env:"WINDOW_DAYS" envDefault:"3"`
	RefreshInterval    time.Duration `env:"REFRESH_INTERVAL" envDefault:"30s"`
	SessionRetention   time.Duration `env:"SESSION_RETENTION" envDefault:"720h"`
	APIAddr            string        `env:"API_ADDR" envDefault:":8080"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPath            string        `env:"LOG_PATH"`
	Notify             bool          `env:"NOTIFY" envDefault:"true"`
	Thresholds         Thresholds
}

// Thresholds are the tunable limits and point weights of rule-based scoring.
type Thresholds struct {
	DailyLimitMinutes   int `env:"DAILY_LIMIT_MINUTES" envDefault:"240"`
	HeavyLimitMinutes   int `env:"DAILY_HEAVY_LIMIT_MINUTES" envDefault:"360"`
	NightLimitMinutes   int `env:"NIGHT_LIMIT_MINUTES" envDefault:"60"`
	BingeCountLimit     int `env:"BINGE_COUNT_LIMIT" envDefault:"3"`
	BingeSessionMinutes int `env:"BINGE_SESSION_THRESHOLD_MINUTES" envDefault:"45"`

	HeavyUsagePoints int `env:"HEAVY_USAGE_POINTS" envDefault:"3"`
	DailyUsagePoints int `env:"DAILY_USAGE_POINTS" envDefault:"2"`
	NightUsagePoints int `env:"NIGHT_USAGE_POINTS" envDefault:"2"`
	BingePoints      int `env:"BINGE_POINTS" envDefault:"2"`
}

// DefaultThresholds returns the stock scoring thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DailyLimitMinutes:   240,
		HeavyLimitMinutes:   360,
		NightLimitMinutes:   60,
		BingeCountLimit:     3,
		BingeSessionMinutes: 45,
		HeavyUsagePoints:    3,
		DailyUsagePoints:    2,
		NightUsagePoints:    2,
		BingePoints:         2,
	}
}

// Validate rejects threshold sets that cannot score consistently.
func (t Thresholds) Validate() error {
	var errs []error
	if t.DailyLimitMinutes < 0 || t.NightLimitMinutes < 0 || t.BingeCountLimit < 0 {
		errs = append(errs, errors.New("limits must not be negative"))
	}
	if t.HeavyLimitMinutes <= t.DailyLimitMinutes {
		errs = append(errs, fmt.Errorf(
			"DAILY_HEAVY_LIMIT_MINUTES (%d) must be above DAILY_LIMIT_MINUTES (%d)",
			t.HeavyLimitMinutes, t.DailyLimitMinutes))
	}
	if t.BingeSessionMinutes <= 0 {
		errs = append(errs, errors.New("BINGE_SESSION_THRESHOLD_MINUTES must be positive"))
	}
	if t.HeavyUsagePoints < 0 || t.DailyUsagePoints < 0 || t.NightUsagePoints < 0 || t.BingePoints < 0 {
		errs = append(errs, errors.New("point weights must not be negative"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = getDefaultDatabasePath()
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = getDefaultModelPath()
	}
	if cfg.WindowDays < 1 {
		return nil, fmt.Errorf("WINDOW_DAYS must be at least 1, got %d", cfg.WindowDays)
	}
	if cfg.ModelMinConfidence < 0 || cfg.ModelMinConfidence > 1 {
		return nil, fmt.Errorf("MODEL_MIN_CONFIDENCE must be within [0,1], got %v", cfg.ModelMinConfidence)
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "screentime-tui", ".env"),
			filepath.Join(home, ".screentime", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "screentime.db"
	}
	return filepath.Join(home, ".config", "screentime-tui", "screentime.db")
}

// getDefaultModelPath returns the default location of the trained risk model.
func getDefaultModelPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "risk_model.json"
	}
	return filepath.Join(home, ".config", "screentime-tui", "risk_model.json")
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
