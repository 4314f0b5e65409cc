package database

// EngineKind identifies the storage backend behind the connection pool.
//
// Engine-specific operations (WAL tuning, file backup/restore, vacuum,
// size inspection) are gated on this kind rather than on a dialect string,
// so each call site handles the full set of variants explicitly.
type EngineKind int

const (
	// EngineSQLite is the embedded single-file SQLite engine.
	// All maintenance and backup operations are supported.
	EngineSQLite EngineKind = iota

	// EngineOther is any external SQL engine reached via driver/DSN.
	// File-level operations are not applicable: backup and restore
	// silently no-op, size and vacuum are rejected.
	EngineOther
)

// String returns a human-readable engine name for logging.
func (k EngineKind) String() string {
	switch k {
	case EngineSQLite:
		return "sqlite"
	case EngineOther:
		return "other"
	default:
		return "unknown"
	}
}

// engineKindFor maps the configured engine name to an EngineKind.
func engineKindFor(engine string) EngineKind {
	if engine == "sqlite" {
		return EngineSQLite
	}
	return EngineOther
}
