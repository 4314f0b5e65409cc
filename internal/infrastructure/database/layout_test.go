package database

import (
	"os"
	"path/filepath"
	"testing"
)

// TestResolveLayout verifies layout resolution with and without override.
func TestResolveLayout(t *testing.T) {
	t.Run("default data directory", func(t *testing.T) {
		l := ResolveLayout("")

		if l.DataDir != defaultDataDir {
			t.Errorf("DataDir = %q, want %q", l.DataDir, defaultDataDir)
		}
		if !l.IsDefault() {
			t.Error("IsDefault() = false, want true")
		}
	})

	t.Run("override data directory", func(t *testing.T) {
		l := ResolveLayout("/var/lib/inkwell")

		if l.DataDir != "/var/lib/inkwell" {
			t.Errorf("DataDir = %q, want %q", l.DataDir, "/var/lib/inkwell")
		}
		if l.UploadDir != filepath.Join("/var/lib/inkwell", uploadDirName) {
			t.Errorf("UploadDir = %q, want nested upload dir", l.UploadDir)
		}
		if l.DBPath != filepath.Join("/var/lib/inkwell", dbFileName) {
			t.Errorf("DBPath = %q, want db file inside data dir", l.DBPath)
		}
		if l.IsDefault() {
			t.Error("IsDefault() = true, want false")
		}
	})
}

// TestLayoutEnsure verifies idempotent directory creation.
func TestLayoutEnsure(t *testing.T) {
	tmpDir := t.TempDir()
	l := ResolveLayout(filepath.Join(tmpDir, "data"))

	if err := l.Ensure(); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	for _, dir := range []string{l.DataDir, l.UploadDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}

	// Second call must not error and must leave the directories in place.
	if err := l.Ensure(); err != nil {
		t.Fatalf("second Ensure() error = %v", err)
	}
	if _, err := os.Stat(l.UploadDir); err != nil {
		t.Errorf("upload dir missing after second Ensure(): %v", err)
	}
}

// TestLayoutBackupPaths verifies backup artifact naming.
func TestLayoutBackupPaths(t *testing.T) {
	l := ResolveLayout("/data")

	if got, want := l.BackupPath("107"), "/data/"+dbFileName+".bak107"; got != want {
		t.Errorf("BackupPath = %q, want %q", got, want)
	}
	if got, want := l.WALBackupPath("107"), "/data/"+dbFileName+"-wal.bak107"; got != want {
		t.Errorf("WALBackupPath = %q, want %q", got, want)
	}
	if got, want := l.SHMBackupPath("107"), "/data/"+dbFileName+"-shm.bak107"; got != want {
		t.Errorf("SHMBackupPath = %q, want %q", got, want)
	}
}
