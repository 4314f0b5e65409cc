package database

import (
	"context"
	"testing"

	"github.com/inkwell-sh/inkwell-core/internal/infrastructure/config"
	"github.com/inkwell-sh/inkwell-core/internal/infrastructure/logging"
)

// testLogger returns a logger for test managers.
func testLogger() *logging.Logger {
	return logging.Default()
}

// newTestManager creates a Manager over a temporary data directory.
// Defaults to test mode (in-memory journal) and a zero settle interval
// so shutdown tests run fast; mutate adjusts the config per test.
func newTestManager(t *testing.T, mutate func(*config.StorageConfig)) *Manager {
	t.Helper()

	cfg := config.Default().Storage
	cfg.DataDir = t.TempDir()
	cfg.TestMode = true
	cfg.CloseSettleSeconds = 0
	if mutate != nil {
		mutate(&cfg)
	}

	return NewManager(cfg, testLogger())
}

// connectTestManager creates a Manager and brings it fully up.
func connectTestManager(t *testing.T, mutate func(*config.StorageConfig)) *Manager {
	t.Helper()

	m := newTestManager(t, mutate)
	if err := m.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error = %v", err)
	}
	if _, err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() {
		_ = m.Close() //nolint:errcheck // Test cleanup
	})
	return m
}

// useTestMigrations points the migration loader at a test fixture
// directory for the duration of the test.
func useTestMigrations(t *testing.T, dir string) {
	t.Helper()

	origFS := MigrationsFS
	origDir := MigrationsDir
	t.Cleanup(func() {
		MigrationsFS = origFS
		MigrationsDir = origDir
	})

	MigrationsFS = testMigrationsFS
	MigrationsDir = dir
}
