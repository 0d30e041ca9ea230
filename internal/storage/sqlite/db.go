// ABOUTME: Store open/close lifecycle and startup integrity checking
// ABOUTME: Uses modernc.org/sqlite in WAL mode with a bounded busy wait
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/oakhaven/memvault/internal/fieldcrypt"
	"github.com/oakhaven/memvault/internal/logger"
)

// Sentinel errors surfaced by the store.
var (
	// ErrStoreCorrupt means the startup integrity check failed. Fatal: there
	// is no degraded mode for a possibly damaged store.
	ErrStoreCorrupt = errors.New("store file failed integrity check")

	// ErrIdentityMismatch means the install ID in the credential store does
	// not match the one echoed in store metadata.
	ErrIdentityMismatch = errors.New("store belongs to a different installation")

	// ErrNotFound is returned for lookups of absent rows.
	ErrNotFound = errors.New("not found")

	// ErrSessionClosed rejects appends to an ended session.
	ErrSessionClosed = errors.New("session is closed")
)

// Store is the encrypted entity store. All sensitive values pass through the
// field cipher on the way in and out; the root key is never written to disk.
type Store struct {
	db     *sql.DB
	cipher *fieldcrypt.Cipher
	path   string
}

// Open opens or creates the store file, applies the schema, and runs the
// startup integrity check. A failed check is recorded in metadata before
// ErrStoreCorrupt is returned.
func Open(ctx context.Context, path string, rootKey []byte) (*Store, error) {
	cipher, err := fieldcrypt.New(rootKey)
	if err != nil {
		return nil, fmt.Errorf("initializing field cipher: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL allows concurrent readers alongside the single writer; busy_timeout
	// gives a bounded wait under lock contention instead of an instant failure.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging store: %w", err)
	}

	if _, err := db.ExecContext(ctx, Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	s := &Store{db: db, cipher: cipher, path: path}

	if err := s.checkIntegrity(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.ensureSchemaVersion(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.SetMeta(ctx, MetaEncryptionMode, EncryptionMode); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the store file location.
func (s *Store) Path() string {
	return s.path
}

// checkIntegrity runs PRAGMA integrity_check and records the outcome in
// metadata. Any result other than "ok" is fatal.
func (s *Store) checkIntegrity(ctx context.Context) error {
	var result string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("running integrity check: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.SetMeta(ctx, MetaIntegrityResult, result); err != nil {
		return err
	}
	if err := s.SetMeta(ctx, MetaIntegrityCheckedAt, now); err != nil {
		return err
	}

	if result != "ok" {
		logger.Error("integrity check failed", "result_length", len(result))
		return ErrStoreCorrupt
	}
	return nil
}

func (s *Store) ensureSchemaVersion(ctx context.Context) error {
	stored, err := s.GetMeta(ctx, MetaSchemaVersion)
	if errors.Is(err, ErrNotFound) {
		return s.SetMeta(ctx, MetaSchemaVersion, fmt.Sprintf("%d", SchemaVersion))
	}
	if err != nil {
		return err
	}
	if stored != fmt.Sprintf("%d", SchemaVersion) {
		// Forward migrations slot in here when version 2 exists.
		return fmt.Errorf("unsupported schema version %q", stored)
	}
	return nil
}

// decryptOrEmpty opens a sealed field. A single un-decryptable field reads as
// empty rather than failing the surrounding row.
func (s *Store) decryptOrEmpty(sealed, entity, id string) string {
	plaintext, err := s.cipher.Open(sealed)
	if err != nil {
		logger.Warn("undecryptable field treated as absent", "entity", entity, "id", id)
		return ""
	}
	return plaintext
}
