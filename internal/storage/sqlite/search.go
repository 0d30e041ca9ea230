// ABOUTME: Keyword search over messages, facts, and session titles
// ABOUTME: Encrypted fields are decrypted and scanned in memory; titles use the index
package sqlite

import (
	"context"
	"strings"

	"github.com/oakhaven/memvault/internal/models"
)

// searchScanCap bounds how many recent messages a single search decrypts.
const searchScanCap = 5000

// SearchMessages scans message content for a case-insensitive substring
// match, newest first. Content is not indexable while encrypted, so this
// necessarily decrypts in memory, bounded by searchScanCap.
func (s *Store) SearchMessages(ctx context.Context, query string, limit int) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM messages ORDER BY created_at DESC, id DESC LIMIT ?
	`, searchScanCap)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	needle := strings.ToLower(query)
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
		content := s.decryptOrEmpty(sealed, "message", m.ID)
		if !strings.Contains(strings.ToLower(content), needle) {
			continue
		}
		m.Role = models.Role(role)
		m.Content = content
		out = append(out, m)
		if len(out) >= limit {
			break
		}
	}
	return out, rows.Err()
}

// SearchFacts matches the query against category, predicate, and decrypted
// object values. Never-shareable facts are excluded unconditionally.
func (s *Store) SearchFacts(ctx context.Context, identityID, query string, maxSensitivity int) ([]models.Fact, error) {
	rows, err := s.db.QueryContext(ctx,
		factSelect+` WHERE identity_id = ? AND consent_scope != ? AND sensitivity <= ?
		ORDER BY updated_at DESC, id ASC`,
		identityID, string(models.ConsentNeverShare), maxSensitivity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	needle := strings.ToLower(query)
	var out []models.Fact
	for rows.Next() {
		fact, err := s.scanFact(rows)
		if err != nil {
			return nil, err
		}
		haystack := strings.ToLower(fact.Category + " " + fact.Predicate + " " + fact.Object)
		if strings.Contains(haystack, needle) {
			out = append(out, *fact)
		}
	}
	return out, rows.Err()
}

// SearchSessions matches titles and goals with an indexed LIKE; those fields
// are plaintext by design.
func (s *Store) SearchSessions(ctx context.Context, identityID, query string, limit int) ([]models.Session, error) {
	wildcard := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, identity_id, goal, title, started_at, ended_at
		FROM sessions
		WHERE identity_id = ? AND (title LIKE ? OR goal LIKE ?)
		ORDER BY started_at DESC LIMIT ?
	`, identityID, wildcard, wildcard, limit)
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
