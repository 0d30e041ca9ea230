// ABOUTME: Store statistics and health metadata
// ABOUTME: Counts, file size, schema version, and integrity-check outcome
package sqlite

import (
	"context"
	"errors"
	"os"
)

// Stats summarizes the store for health checks and diagnostics. It carries
// counts and markers only, never stored values.
type Stats struct {
	Sessions           int    `json:"sessions"`
	OpenSessions       int    `json:"open_sessions"`
	Messages           int    `json:"messages"`
	Facts              int    `json:"facts"`
	FileBytes          int64  `json:"file_bytes"`
	SchemaVersion      string `json:"schema_version"`
	IntegrityResult    string `json:"integrity_result"`
	IntegrityCheckedAt string `json:"integrity_checked_at"`
	EncryptionMode     string `json:"encryption_mode"`
}

// Stats gathers current store statistics.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM sessions`, &stats.Sessions},
		{`SELECT COUNT(*) FROM sessions WHERE ended_at IS NULL`, &stats.OpenSessions},
		{`SELECT COUNT(*) FROM messages`, &stats.Messages},
		{`SELECT COUNT(*) FROM facts`, &stats.Facts},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	if info, err := os.Stat(s.path); err == nil {
		stats.FileBytes = info.Size()
	}

	for _, m := range []struct {
		key  string
		dest *string
	}{
		{MetaSchemaVersion, &stats.SchemaVersion},
		{MetaIntegrityResult, &stats.IntegrityResult},
		{MetaIntegrityCheckedAt, &stats.IntegrityCheckedAt},
		{MetaEncryptionMode, &stats.EncryptionMode},
	} {
		v, err := s.GetMeta(ctx, m.key)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		*m.dest = v
	}

	return stats, nil
}
