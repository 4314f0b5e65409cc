package database

import (
	"fmt"
	"io"
	"os"
)

// BackupSet records the group of snapshot files produced by one backup,
// tagged with the version the upgrade was heading for. WAL and SHM are
// empty when the corresponding live sidecar did not exist at backup time.
// At most one live BackupSet exists per process unless explicitly reset.
type BackupSet struct {
	Tag     string
	Primary string
	WAL     string
	SHM     string
}

// Backup snapshots the primary database file and any live WAL/SHM sidecars
// before a risky in-place migration. SQLite engine only; for other engines
// this is deliberately a silent no-op, because callers invoke it
// unconditionally during generic upgrade flows.
//
// One backup per process: if a BackupSet is already recorded, subsequent
// calls do nothing until ResetBackup. Every snapshot that should exist is
// verified on disk after copying; a missing snapshot is a hard
// ErrBackupIncomplete failure, never a warning, because a later restore
// depends on it.
//
// Parameters:
//   - tag: Version tag appended to each snapshot filename (".bak<tag>")
//
// Returns:
//   - error: Backup-integrity failure, surfaced to the caller who decides
//     whether to proceed with the risky operation anyway
func (m *Manager) Backup(tag string) error {
	if m.engine != EngineSQLite {
		return nil
	}

	if m.backup != nil {
		m.log.Info("backup already recorded for this process, skipping",
			"existing_tag", m.backup.Tag, "requested_tag", tag)
		return nil
	}

	set := BackupSet{
		Tag:     tag,
		Primary: m.layout.BackupPath(tag),
	}

	if err := copyFile(m.layout.DBPath, set.Primary); err != nil {
		return fmt.Errorf("snapshotting database file: %w", err)
	}

	// Sidecars are snapshotted only if they exist on disk right now.
	// A WAL-mode database holds uncheckpointed pages in them, so skipping
	// a live sidecar would make the snapshot unusable.
	if fileExists(m.layout.WALPath()) {
		set.WAL = m.layout.WALBackupPath(tag)
		if err := copyFile(m.layout.WALPath(), set.WAL); err != nil {
			return fmt.Errorf("snapshotting WAL sidecar: %w", err)
		}
	}
	if fileExists(m.layout.SHMPath()) {
		set.SHM = m.layout.SHMBackupPath(tag)
		if err := copyFile(m.layout.SHMPath(), set.SHM); err != nil {
			return fmt.Errorf("snapshotting SHM sidecar: %w", err)
		}
	}

	// Verify every expected snapshot actually landed on disk.
	for _, snapshot := range set.paths() {
		if !fileExists(snapshot) {
			return fmt.Errorf("%w: snapshot %s missing after copy", ErrBackupIncomplete, snapshot)
		}
	}

	m.backup = &set
	m.log.Info("database backup complete",
		"tag", tag,
		"primary", set.Primary,
		"wal", set.WAL != "",
		"shm", set.SHM != "",
	)
	return nil
}

// Restore rolls the live database files back to the recorded BackupSet
// after a failed migration. SQLite engine only (silent no-op otherwise).
//
// With no recorded backup this logs and returns nil: the upgrade flow
// calls restore unconditionally and an absent backup simply means nothing
// risky ran. Two states are unrecoverable and terminate the process via
// the exit hook: nothing on disk to restore from, and failure to delete
// the corrupted live files (a partial mix of old and new files is worse
// than stopping).
func (m *Manager) Restore() error {
	if m.engine != EngineSQLite {
		return nil
	}

	if m.backup == nil {
		m.log.Info("no backup recorded, nothing to restore")
		return nil
	}
	set := m.backup

	// Before deleting anything, confirm something exists to fall back to.
	if !fileExists(set.Primary) && !fileExists(m.layout.WALPath()) && !fileExists(m.layout.SHMPath()) {
		m.log.Error("restore impossible: no snapshot and no live sidecar files exist",
			"tag", set.Tag, "snapshot", set.Primary)
		m.exit(1)
		return ErrRestoreUnrecoverable
	}

	// Remove the (possibly corrupt) live files.
	for _, live := range []string{m.layout.DBPath, m.layout.WALPath(), m.layout.SHMPath()} {
		if err := os.Remove(live); err != nil && !os.IsNotExist(err) {
			m.log.Error("restore failed: cannot delete corrupted live file",
				"path", live, "error", err)
			m.exit(1)
			return fmt.Errorf("%w: deleting %s: %v", ErrRestoreUnrecoverable, live, err)
		}
	}

	// Copy the snapshots back over the live paths.
	if err := copyFile(set.Primary, m.layout.DBPath); err != nil {
		return fmt.Errorf("restoring database file: %w", err)
	}
	if set.WAL != "" {
		if err := copyFile(set.WAL, m.layout.WALPath()); err != nil {
			return fmt.Errorf("restoring WAL sidecar: %w", err)
		}
	}
	if set.SHM != "" {
		if err := copyFile(set.SHM, m.layout.SHMPath()); err != nil {
			return fmt.Errorf("restoring SHM sidecar: %w", err)
		}
	}

	m.log.Info("database restored from backup", "tag", set.Tag)
	return nil
}

// BackupRecord returns the currently recorded backup set, or nil.
func (m *Manager) BackupRecord() *BackupSet {
	return m.backup
}

// ResetBackup clears the recorded backup set so a new Backup may run.
// Used by the upgrade flow once a migration is confirmed good.
func (m *Manager) ResetBackup() {
	m.backup = nil
}

// paths returns every snapshot path the set expects to exist on disk.
func (s *BackupSet) paths() []string {
	paths := []string{s.Primary}
	if s.WAL != "" {
		paths = append(paths, s.WAL)
	}
	if s.SHM != "" {
		paths = append(paths, s.SHM)
	}
	return paths
}

// fileExists reports whether a regular file exists at path.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// copyFile copies src to dst, replacing dst if present, and syncs the
// destination before returning so a crash cannot leave a torn snapshot.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close() //nolint:errcheck // Copy error takes precedence
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close() //nolint:errcheck // Sync error takes precedence
		return err
	}
	return out.Close()
}
