// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Gateway construction, response printing, and display formatting
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/oakhaven/memvault/internal/config"
	"github.com/oakhaven/memvault/internal/gateway"
	"github.com/oakhaven/memvault/internal/keyring"
	"github.com/oakhaven/memvault/internal/relevance"
	"github.com/oakhaven/memvault/internal/selector"
	"github.com/oakhaven/memvault/internal/storage/sqlite"
)

// openGateway builds the full stack behind the gateway: keychain, encrypted
// store, relevance engine, selector. The returned closer must be deferred.
func openGateway(ctx context.Context) (*gateway.Gateway, func(), error) {
	// Load .env for local overrides
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	custodian := keyring.NewCustodian(keyring.SystemStore{}, cfg.KeyringService)
	rootKey, err := custodian.RootKey()
	if err != nil {
		return nil, nil, fmt.Errorf("unlocking root key: %w", err)
	}
	installID, err := custodian.InstallID()
	if err != nil {
		return nil, nil, fmt.Errorf("resolving install id: %w", err)
	}

	store, err := sqlite.Open(ctx, cfg.DBPath, rootKey)
	if err != nil {
		if errors.Is(err, sqlite.ErrStoreCorrupt) {
			return nil, nil, fmt.Errorf("store failed integrity check: %w", err)
		}
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}

	if _, err := store.BootstrapIdentity(ctx, installID); err != nil {
		_ = store.Close()
		if errors.Is(err, sqlite.ErrIdentityMismatch) {
			return nil, nil, fmt.Errorf("store belongs to a different installation: %w", err)
		}
		return nil, nil, fmt.Errorf("bootstrapping identity: %w", err)
	}

	engine := relevance.NewEngine(store)
	sel := selector.New(store, nil)
	gw := gateway.New(store, engine, sel, cfg)
	return gw, func() { _ = store.Close() }, nil
}

// unwrap converts a gateway response into (data, error) for CLI reporting.
func unwrap(resp gateway.Response) (any, error) {
	if !resp.OK {
		return nil, fmt.Errorf("operation failed: %s", resp.Error)
	}
	return resp.Data, nil
}

// printJSON writes data as indented JSON to stdout.
func printJSON(data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		mins := int(diff.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}
