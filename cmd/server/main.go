// ABOUTME: Main entry point for the memvault MCP server with stdio transport
// ABOUTME: Unlocks the root key, opens the encrypted store, and registers all tools
package main

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/oakhaven/memvault/internal/config"
	"github.com/oakhaven/memvault/internal/gateway"
	"github.com/oakhaven/memvault/internal/keyring"
	"github.com/oakhaven/memvault/internal/mcpserver"
	"github.com/oakhaven/memvault/internal/relevance"
	"github.com/oakhaven/memvault/internal/selector"
	"github.com/oakhaven/memvault/internal/storage/sqlite"
)

const version = "0.1.0"

func main() {
	// Load .env file if it exists (for local overrides)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// The root key and install id live in the OS credential store, never on
	// disk next to the database.
	custodian := keyring.NewCustodian(keyring.SystemStore{}, cfg.KeyringService)
	rootKey, err := custodian.RootKey()
	if err != nil {
		log.Fatalf("Failed to unlock root key: %v", err)
	}
	installID, err := custodian.InstallID()
	if err != nil {
		log.Fatalf("Failed to resolve install id: %v", err)
	}

	ctx := context.Background()
	store, err := sqlite.Open(ctx, cfg.DBPath, rootKey)
	if err != nil {
		if errors.Is(err, sqlite.ErrStoreCorrupt) {
			log.Fatalf("Store failed integrity check, refusing to start: %v", err)
		}
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	if _, err := store.BootstrapIdentity(ctx, installID); err != nil {
		if errors.Is(err, sqlite.ErrIdentityMismatch) {
			log.Fatalf("Store belongs to a different installation, refusing to start: %v", err)
		}
		log.Fatalf("Failed to bootstrap identity: %v", err)
	}

	engine := relevance.NewEngine(store)
	sel := selector.New(store, nil)
	gw := gateway.New(store, engine, sel, cfg)

	srv := server.NewMCPServer(
		"memvault",
		version,
	)
	mcpserver.RegisterTools(srv, gw)

	log.Println("memvault MCP server starting on stdio...")
	if err := server.ServeStdio(srv); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
