package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/inkwell-sh/inkwell-core/internal/infrastructure/config"
	"github.com/inkwell-sh/inkwell-core/internal/infrastructure/logging"
)

// Connection tuning constants.
const (
	// filePermissions is the permission mode for the database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second

	// connMaxIdleTime is how long idle connections are kept open.
	connMaxIdleTime = 30 * time.Minute
)

// Manager owns the complete lifecycle of the embedded database: directory
// guard, connection setup and tuning, migrations, backup/restore around
// risky upgrades, maintenance operations, and the shutdown sequence.
//
// Exactly one Manager exists per process. It is constructed once at startup
// and handed by reference to every collaborator; no package-level state.
type Manager struct {
	layout Layout
	cfg    config.StorageConfig
	engine EngineKind
	log    *logging.Logger

	pool *sql.DB
	// closer is the pool's close primitive, split from pool so the
	// shutdown tests can inject a failing double.
	closer closer

	backup *BackupSet
	faults *faultFeed

	// settle is how long Close waits after each attempt for an
	// asynchronous failure to surface before declaring success.
	settle time.Duration

	// exit terminates the process on the two unrecoverable restore
	// scenarios. Defaults to os.Exit; tests inject a recorder.
	exit func(code int)
}

// NewManager constructs the process's database manager.
//
// Parameters:
//   - cfg: Storage configuration (data dir already env/flag resolved)
//   - log: Logger for lifecycle events
//
// Returns:
//   - *Manager: Manager ready for EnsureDirs and Connect
func NewManager(cfg config.StorageConfig, log *logging.Logger) *Manager {
	return &Manager{
		layout: ResolveLayout(cfg.DataDir),
		cfg:    cfg,
		engine: engineKindFor(cfg.Engine),
		log:    log.With("component", "database"),
		faults: newFaultFeed(),
		settle: time.Duration(cfg.CloseSettleSeconds) * time.Second,
		exit:   os.Exit,
	}
}

// Layout returns the resolved filesystem layout.
func (m *Manager) Layout() Layout {
	return m.layout
}

// Engine returns the detected engine kind.
func (m *Manager) Engine() EngineKind {
	return m.engine
}

// EnsureDirs creates the data and upload directories if absent.
// Idempotent; must run before any connection attempt.
func (m *Manager) EnsureDirs() error {
	return m.layout.Ensure()
}

// Connect opens the pooled connection, applies engine-specific tuning,
// and runs all pending migrations to the latest version. It must complete
// before any other component touches the pool.
//
// For the SQLite engine the connection enables foreign-key enforcement,
// selects an in-memory journal under test configuration (WAL otherwise),
// hands SQLite a page-cache budget in kibibytes, and enables full
// auto-vacuum. Tuning results are logged, not validated: the engine may
// silently clamp values.
//
// Parameters:
//   - ctx: Context for connection verification timeout
//
// Returns:
//   - EngineKind: The active engine, for the caller's operation gating
//   - error: Fatal; the process must not continue on a failed Connect
func (m *Manager) Connect(ctx context.Context) (EngineKind, error) {
	if m.pool != nil {
		return m.engine, nil
	}

	driver, dsn := m.dataSource()

	pool, err := sql.Open(driver, dsn)
	if err != nil {
		return m.engine, fmt.Errorf("opening database: %w", err)
	}

	if m.engine == EngineSQLite {
		// SQLite supports a single writer; keep one connection so every
		// session-scoped pragma applies to all statements.
		pool.SetMaxOpenConns(1)
		pool.SetMaxIdleConns(1)
		pool.SetConnMaxLifetime(time.Hour)
		pool.SetConnMaxIdleTime(connMaxIdleTime)
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close() //nolint:errcheck // Best effort cleanup on error path
		return m.engine, fmt.Errorf("verifying database connection: %w", err)
	}

	m.pool = pool
	m.closer = pool

	if m.engine == EngineSQLite {
		m.applyTuning(ctx)
		// Owner read/write only. Ignore error on first run; the file may
		// not exist until the first write.
		_ = os.Chmod(m.layout.DBPath, filePermissions)
	}

	applied, err := m.Migrate(ctx)
	if err != nil {
		return m.engine, fmt.Errorf("running migrations: %w", err)
	}
	m.log.Info("database connected",
		"engine", m.engine.String(),
		"path", m.layout.DBPath,
		"migrations_applied", applied,
	)

	return m.engine, nil
}

// Handle returns the raw connection pool for the query layer.
// Valid only between a successful Connect and Close.
func (m *Manager) Handle() *sql.DB {
	return m.pool
}

// dataSource resolves the driver name and DSN for the configured engine.
func (m *Manager) dataSource() (driver, dsn string) {
	if m.engine == EngineSQLite {
		return "sqlite3", fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
			m.layout.DBPath,
			m.cfg.BusyTimeout*msPerSecond,
		)
	}
	return m.cfg.Driver, m.cfg.DSN
}

// applyTuning issues the one-shot SQLite tuning pragmas. Best-effort and
// informational: results are logged, never validated, because the engine
// may clamp or ignore values depending on database state.
func (m *Manager) applyTuning(ctx context.Context) {
	journal := "WAL"
	if m.cfg.TestMode {
		journal = "MEMORY"
	}
	m.pragma(ctx, "journal_mode", journal)
	m.pragma(ctx, "cache_size", fmt.Sprintf("-%d", m.cfg.CacheSizeKB))
	m.pragma(ctx, "auto_vacuum", "FULL")
}

// pragma executes a single PRAGMA assignment and logs the engine's reply.
func (m *Manager) pragma(ctx context.Context, name, value string) {
	stmt := fmt.Sprintf("PRAGMA %s = %s", name, value)

	var reply string
	err := m.pool.QueryRowContext(ctx, stmt).Scan(&reply)
	switch {
	case err == sql.ErrNoRows:
		// Assignments like cache_size return no row; that is fine.
		reply = "(no result)"
	case err != nil:
		m.log.Warn("pragma failed", "pragma", name, "value", value, "error", err)
		return
	}

	if m.cfg.LogStatements {
		m.log.Debug("pragma applied", "pragma", name, "value", value, "result", reply)
	}
}
