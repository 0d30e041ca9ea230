// ABOUTME: Identity bootstrap and access for the one-per-device owner row
// ABOUTME: Cross-checks the credential-store install ID against metadata on startup
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/oakhaven/memvault/internal/models"
)

// BootstrapIdentity creates the identity row on first run and verifies on
// every later startup that the store still belongs to this installation.
// A mismatch between the credential-store install ID and the metadata echo
// is fatal, same tier as a failed integrity check.
func (s *Store) BootstrapIdentity(ctx context.Context, installID string) (*models.Identity, error) {
	echoed, err := s.GetMeta(ctx, MetaInstallID)
	switch {
	case errors.Is(err, ErrNotFound):
		if err := s.SetMeta(ctx, MetaInstallID, installID); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case echoed != installID:
		return nil, ErrIdentityMismatch
	}

	identity, err := s.GetIdentity(ctx)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	identity = &models.Identity{ID: installID, CreatedAt: now, UpdatedAt: now}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO identity (id, display_name, created_at, updated_at)
		VALUES (?, NULL, ?, ?)
	`, identity.ID, identity.CreatedAt, identity.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return identity, nil
}

// GetIdentity returns the single identity row.
func (s *Store) GetIdentity(ctx context.Context) (*models.Identity, error) {
	var (
		identity    models.Identity
		displayName sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, created_at, updated_at FROM identity LIMIT 1
	`).Scan(&identity.ID, &displayName, &identity.CreatedAt, &identity.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if displayName.Valid {
		identity.DisplayName = displayName.String
	}
	return &identity, nil
}

// SetDisplayName updates the identity's optional display name. This is the
// only mutable identity attribute.
func (s *Store) SetDisplayName(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE identity SET display_name = ?, updated_at = ?
	`, name, time.Now().UTC())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
