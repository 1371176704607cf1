package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/angirov/gretildb/internal/sqlutil"
)

// ExportTo writes a durable copy of the store to path via VACUUM INTO.
// Any stale snapshot file (and WAL leftovers beside it) is removed first,
// because VACUUM INTO refuses to overwrite an existing file.
func (s *Store) ExportTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	if _, err := s.db.Exec("VACUUM INTO " + sqlutil.QuoteLiteral(path)); err != nil {
		return fmt.Errorf("failed to export snapshot to %s: %w", path, err)
	}
	return nil
}
