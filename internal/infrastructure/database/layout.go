package database

import (
	"fmt"
	"os"
	"path/filepath"
)

// Filesystem layout constants.
const (
	// defaultDataDir is used when no override is supplied via flag or env.
	defaultDataDir = "./data"

	// dbFileName is the primary database file inside the data directory.
	dbFileName = "inkwell.db"

	// uploadDirName is the upload subdirectory inside the data directory.
	uploadDirName = "upload"

	// dirPermissions is the permission mode for created directories.
	dirPermissions = 0750
)

// Layout describes the on-disk locations the database manager owns:
// the data directory, the nested upload directory, and the primary
// database file. Resolved once at startup and immutable afterwards.
type Layout struct {
	// DataDir holds the database file, its sidecars, and backups.
	DataDir string

	// UploadDir holds user-uploaded files, nested inside DataDir.
	UploadDir string

	// DBPath is the primary SQLite database file inside DataDir.
	DBPath string
}

// ResolveLayout builds the filesystem layout from an optional data
// directory override (launch argument or INKWELL_DATA_DIR). An empty
// override selects the default location.
func ResolveLayout(override string) Layout {
	dataDir := defaultDataDir
	if override != "" {
		dataDir = override
	}
	return Layout{
		DataDir:   dataDir,
		UploadDir: filepath.Join(dataDir, uploadDirName),
		DBPath:    filepath.Join(dataDir, dbFileName),
	}
}

// IsDefault reports whether the layout points at the default data
// directory. Collaborators that must be disabled on relocated
// deployments (the plugin subsystem) key off this.
func (l Layout) IsDefault() bool {
	return l.DataDir == defaultDataDir
}

// Ensure creates the data and upload directories if they are absent.
// Safe to call repeatedly; existing directories are left untouched.
//
// Returns:
//   - error: The underlying I/O error, fatal at startup
func (l Layout) Ensure() error {
	if err := os.MkdirAll(l.DataDir, dirPermissions); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(l.UploadDir, dirPermissions); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}
	return nil
}

// WALPath returns the path of the write-ahead-log sidecar file.
func (l Layout) WALPath() string {
	return l.DBPath + "-wal"
}

// SHMPath returns the path of the shared-memory sidecar file.
func (l Layout) SHMPath() string {
	return l.DBPath + "-shm"
}

// BackupPath returns the snapshot path of the primary file for a version tag.
func (l Layout) BackupPath(tag string) string {
	return l.DBPath + ".bak" + tag
}

// WALBackupPath returns the snapshot path of the WAL sidecar for a version tag.
func (l Layout) WALBackupPath(tag string) string {
	return l.WALPath() + ".bak" + tag
}

// SHMBackupPath returns the snapshot path of the SHM sidecar for a version tag.
func (l Layout) SHMBackupPath(tag string) string {
	return l.SHMPath() + ".bak" + tag
}
