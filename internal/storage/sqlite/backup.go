// ABOUTME: Point-in-time backup of the store file while it stays open
// ABOUTME: VACUUM INTO produces a consistent snapshot without blocking readers
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backup writes a consistent snapshot of the store to destPath. The store
// remains open for reads; writers are only held for the snapshot duration.
func (s *Store) Backup(ctx context.Context, destPath string) error {
	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("backup destination already exists: %s", filepath.Base(destPath))
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o700); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, destPath); err != nil {
		return fmt.Errorf("writing backup snapshot: %w", err)
	}
	return nil
}
