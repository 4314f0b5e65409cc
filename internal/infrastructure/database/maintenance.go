package database

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Size returns the on-disk size of the primary database file in bytes.
//
// SQLite engine only: other engines get ErrUnsupportedEngine without any
// disk access, since their storage is not a local file this process owns.
func (m *Manager) Size() (int64, error) {
	if m.engine != EngineSQLite {
		return 0, ErrUnsupportedEngine
	}

	info, err := os.Stat(m.layout.DBPath)
	if err != nil {
		return 0, fmt.Errorf("statting database file: %w", err)
	}
	return info.Size(), nil
}

// Shrink reclaims free space with a full-database VACUUM.
//
// This rewrites the entire database file and can take a long time on
// large stores; callers must treat it as a blocking maintenance task and
// keep it off latency-sensitive paths. SQLite engine only.
//
// Parameters:
//   - ctx: Context passed through to the statement
//
// Returns:
//   - error: ErrUnsupportedEngine, ErrNotConnected, or the engine's error
func (m *Manager) Shrink(ctx context.Context) error {
	if m.engine != EngineSQLite {
		return ErrUnsupportedEngine
	}
	if m.pool == nil {
		return ErrNotConnected
	}

	start := time.Now()
	if _, err := m.pool.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuuming database: %w", err)
	}

	m.log.Info("database vacuum complete", "duration", time.Since(start))
	return nil
}
