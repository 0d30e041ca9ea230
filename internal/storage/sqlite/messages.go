// ABOUTME: Append-only message persistence with transparent content encryption
// ABOUTME: Reads decrypt per field; a bad field reads as absent, not as a failure
package sqlite

import (
	"context"
	"fmt"

	"github.com/oakhaven/memvault/internal/models"
)

// AddMessage appends a message to an open session. Content is sealed before
// it touches the database; there is no update path for messages.
func (s *Store) AddMessage(ctx context.Context, m *models.Message) error {
	session, err := s.GetSession(ctx, m.SessionID)
	if err != nil {
		return err
	}
	if !session.Open() {
		return ErrSessionClosed
	}

	sealed, err := s.cipher.Seal(m.Content)
	if err != nil {
		return fmt.Errorf("sealing message content: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (id, session_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.SessionID, string(m.Role), sealed, m.CreatedAt)
	return err
}

// RecentMessages returns the last n messages of a session in chronological
// order (queried newest-first, then reversed for context use).
func (s *Store) RecentMessages(ctx context.Context, sessionID string, n int) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM messages WHERE session_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?
	`, sessionID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var (
			m      models.Message
			sealed string
			role   string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &sealed, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = models.Role(role)
		m.Content = s.decryptOrEmpty(sealed, "message", m.ID)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse newest-first into chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// CountMessages returns the total message count across all sessions.
func (s *Store) CountMessages(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n)
	return n, err
}
