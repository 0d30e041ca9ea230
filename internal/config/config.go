// ABOUTME: Centralized configuration for the memvault store and gateway
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
)

// Config holds all configuration for the memory system.
type Config struct {
	// Storage settings
	DBPath         string
	KeyringService string

	// Selection settings
	TokenBudget    int
	Alpha          float64
	RecentMessages int
	MaxSensitivity int

	// Gateway settings
	ContextRatePerSec int

	// Decay settings
	DefaultHalfLifeDays float64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:              getEnv("MEMVAULT_DB_PATH", DefaultDBPath()),
		KeyringService:      getEnv("MEMVAULT_KEYRING_SERVICE", "memvault"),
		TokenBudget:         getEnvInt("MEMVAULT_TOKEN_BUDGET", 1500),
		Alpha:               getEnvFloat("MEMVAULT_SCORE_ALPHA", 0.7),
		RecentMessages:      getEnvInt("MEMVAULT_RECENT_MESSAGES", 10),
		MaxSensitivity:      getEnvInt("MEMVAULT_MAX_SENSITIVITY", 2),
		ContextRatePerSec:   getEnvInt("MEMVAULT_CONTEXT_RATE", 5),
		DefaultHalfLifeDays: getEnvFloat("MEMVAULT_HALF_LIFE_DAYS", 90),
	}

	return cfg, cfg.Validate()
}

// Validate checks configuration ranges.
func (c *Config) Validate() error {
	if c.Alpha < 0 || c.Alpha > 1 {
		return fmt.Errorf("MEMVAULT_SCORE_ALPHA must be 0-1, got %f", c.Alpha)
	}
	if c.TokenBudget < 100 || c.TokenBudget > 3000 {
		return fmt.Errorf("MEMVAULT_TOKEN_BUDGET must be 100-3000, got %d", c.TokenBudget)
	}
	if c.MaxSensitivity < 0 || c.MaxSensitivity > 3 {
		return fmt.Errorf("MEMVAULT_MAX_SENSITIVITY must be 0-3, got %d", c.MaxSensitivity)
	}
	if c.ContextRatePerSec < 1 {
		return fmt.Errorf("MEMVAULT_CONTEXT_RATE must be positive, got %d", c.ContextRatePerSec)
	}
	if c.DefaultHalfLifeDays <= 0 {
		return fmt.Errorf("MEMVAULT_HALF_LIFE_DAYS must be positive, got %f", c.DefaultHalfLifeDays)
	}
	return nil
}

// DefaultDataDir returns the XDG data directory for memvault.
// Respects XDG_DATA_HOME environment variable override for testing.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, "memvault")
}

// DefaultDBPath returns the default store file path.
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "memvault.db")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
