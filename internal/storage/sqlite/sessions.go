// ABOUTME: Session persistence: create, end with summary, time-ordered listing
// ABOUTME: Goals and titles stay plaintext so session search can use an index
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/oakhaven/memvault/internal/models"
)

// CreateSession opens a new session for the identity.
func (s *Store) CreateSession(ctx context.Context, identityID, goal string) (*models.Session, error) {
	session, err := models.NewSession(identityID, goal)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, identity_id, goal, title, started_at, ended_at)
		VALUES (?, ?, ?, NULL, ?, NULL)
	`, session.ID, session.IdentityID, nullString(session.Goal), session.StartedAt)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession returns a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, identity_id, goal, title, started_at, ended_at
		FROM sessions WHERE id = ?
	`, id)
	return scanSession(row)
}

// CurrentOpenSession returns the most recently started open session, or
// ErrNotFound when every session is closed. Callers use this to resolve the
// "current session" default once at the call boundary.
func (s *Store) CurrentOpenSession(ctx context.Context) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, identity_id, goal, title, started_at, ended_at
		FROM sessions WHERE ended_at IS NULL
		ORDER BY started_at DESC LIMIT 1
	`)
	return scanSession(row)
}

// EndSession closes a session with an optional summary title. Ending an
// already-closed session is a no-op on the end timestamp.
func (s *Store) EndSession(ctx context.Context, id, summary string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET ended_at = COALESCE(ended_at, ?), title = COALESCE(NULLIF(?, ''), title)
		WHERE id = ?
	`, time.Now().UTC(), summary, id)
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

// ListSessions returns up to limit sessions, newest first.
func (s *Store) ListSessions(ctx context.Context, identityID string, limit int) ([]models.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, identity_id, goal, title, started_at, ended_at
		FROM sessions WHERE identity_id = ?
		ORDER BY started_at DESC LIMIT ?
	`, identityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *session)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var (
		session models.Session
		goal    sql.NullString
		title   sql.NullString
		ended   sql.NullTime
	)
	err := row.Scan(&session.ID, &session.IdentityID, &goal, &title, &session.StartedAt, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if goal.Valid {
		session.Goal = goal.String
	}
	if title.Valid {
		session.Title = title.String
	}
	if ended.Valid {
		t := ended.Time
		session.EndedAt = &t
	}
	return &session, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
