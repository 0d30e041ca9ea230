// ABOUTME: Tests for environment-driven configuration loading
// ABOUTME: Verifies defaults, overrides, and validation failures
package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TokenBudget != 1500 {
		t.Errorf("TokenBudget = %d, want 1500", cfg.TokenBudget)
	}
	if cfg.Alpha != 0.7 {
		t.Errorf("Alpha = %v, want 0.7", cfg.Alpha)
	}
	if cfg.RecentMessages != 10 {
		t.Errorf("RecentMessages = %d, want 10", cfg.RecentMessages)
	}
	if cfg.DefaultHalfLifeDays != 90 {
		t.Errorf("DefaultHalfLifeDays = %v, want 90", cfg.DefaultHalfLifeDays)
	}
	if cfg.KeyringService != "memvault" {
		t.Errorf("KeyringService = %q, want memvault", cfg.KeyringService)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MEMVAULT_TOKEN_BUDGET", "800")
	t.Setenv("MEMVAULT_SCORE_ALPHA", "0.5")
	t.Setenv("MEMVAULT_DB_PATH", "/tmp/custom.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TokenBudget != 800 {
		t.Errorf("TokenBudget = %d, want 800", cfg.TokenBudget)
	}
	if cfg.Alpha != 0.5 {
		t.Errorf("Alpha = %v, want 0.5", cfg.Alpha)
	}
	if cfg.DBPath != "/tmp/custom.db" {
		t.Errorf("DBPath = %q, want /tmp/custom.db", cfg.DBPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "alpha too high",
			mutate: func(c *Config) { c.Alpha = 1.5 },
			errMsg: "MEMVAULT_SCORE_ALPHA",
		},
		{
			name:   "budget too small",
			mutate: func(c *Config) { c.TokenBudget = 50 },
			errMsg: "MEMVAULT_TOKEN_BUDGET",
		},
		{
			name:   "budget too large",
			mutate: func(c *Config) { c.TokenBudget = 5000 },
			errMsg: "MEMVAULT_TOKEN_BUDGET",
		},
		{
			name:   "sensitivity out of range",
			mutate: func(c *Config) { c.MaxSensitivity = 4 },
			errMsg: "MEMVAULT_MAX_SENSITIVITY",
		},
		{
			name:   "zero rate",
			mutate: func(c *Config) { c.ContextRatePerSec = 0 },
			errMsg: "MEMVAULT_CONTEXT_RATE",
		},
		{
			name:   "negative half-life",
			mutate: func(c *Config) { c.DefaultHalfLifeDays = -1 },
			errMsg: "MEMVAULT_HALF_LIFE_DAYS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %q, want contains %q", err.Error(), tt.errMsg)
			}
		})
	}
}
