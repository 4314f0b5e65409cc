// Package database manages the lifecycle of Inkwell's embedded SQLite store.
//
// This package owns:
//   - Filesystem guard: idempotent creation of the data and upload directories
//   - Connection setup: pooled connection, pragma tuning, WAL mode
//   - Schema migrations (embedded, versioned, per-migration transactions)
//   - Backup/restore of the database file and its WAL/SHM sidecars around
//     risky in-place migrations
//   - A deterministic shutdown sequence that retries the pool close until
//     no asynchronous failure surfaces
//   - Maintenance operations: size inspection and vacuum
//
// Exactly one Manager exists per process. Operations that only make sense
// for a local single-file engine are gated on EngineKind: size and vacuum
// reject other engines with ErrUnsupportedEngine, while backup and restore
// silently no-op so generic upgrade flows can call them unconditionally.
//
// Usage:
//
//	mgr := database.NewManager(cfg.Storage, logger)
//	if err := mgr.EnsureDirs(); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := mgr.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer mgr.Close()
//
// Upgrade bracketing:
//
//	if err := mgr.Backup(targetVersion); err != nil {
//	    return err // snapshot incomplete, caller decides whether to proceed
//	}
//	if err := riskyPatch(); err != nil {
//	    mgr.Restore() // all-or-nothing rollback of the live files
//	}
//
// Error handling follows three tiers: startup failures (directories,
// connection, migrations) are fatal; backup-integrity failures are
// surfaced to the caller and never swallowed; the two unrecoverable
// restore states terminate the process through the manager's exit hook.
package database
