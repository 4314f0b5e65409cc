package database

import "errors"

// Domain-specific errors for database lifecycle operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when an operation requires an open pool
	// and Connect has not been called (or the pool was already closed).
	ErrNotConnected = errors.New("database: not connected")

	// ErrUnsupportedEngine is returned when a SQLite-only maintenance
	// operation (size, vacuum) is invoked against another engine.
	// This is a configuration-dependent rejection, not a crash.
	ErrUnsupportedEngine = errors.New("database: operation unsupported on this engine")

	// ErrBackupIncomplete is returned when a snapshot file that should
	// exist is missing after a backup. Never downgrade this to a warning:
	// a later restore would silently lose data.
	ErrBackupIncomplete = errors.New("database: backup verification failed")

	// ErrRestoreUnrecoverable is returned (after the exit hook fires) when
	// a restore finds neither a snapshot nor live sidecar files, or cannot
	// delete the corrupted live files. Continuing would risk operating on
	// a corrupt database.
	ErrRestoreUnrecoverable = errors.New("database: restore unrecoverable")
)
