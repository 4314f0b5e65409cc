package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with an invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, []string{"--config", "/nonexistent/path/config.yaml"})
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_CleanLifecycle verifies a full startup and shutdown cycle.
func TestRun_CleanLifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
storage:
  data_dir: "` + filepath.Join(tmpDir, "data") + `"
  engine: "sqlite"
  busy_timeout: 5
  cache_size_kb: 1024
  test_mode: true
  close_settle_seconds: 0

logging:
  level: error
  format: json
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	// Cancel shortly after startup so run() exits its wait.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx, []string{"--config", configPath}); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	// The guard must have created the data tree.
	if _, err := os.Stat(filepath.Join(tmpDir, "data", "upload")); err != nil {
		t.Errorf("upload directory not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "data", "inkwell.db")); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

// TestRun_DataDirFlagOverride verifies the launch argument beats the config file.
func TestRun_DataDirFlagOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	override := filepath.Join(tmpDir, "elsewhere")

	configContent := `
storage:
  data_dir: "` + filepath.Join(tmpDir, "data") + `"
  test_mode: true
  close_settle_seconds: 0

logging:
  level: error
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx, []string{"--config", configPath, "--data-dir", override}); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(override, "inkwell.db")); err != nil {
		t.Errorf("database not created in override directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "data")); !os.IsNotExist(err) {
		t.Error("config-file data directory should not have been created")
	}
}

// TestResolveConfigPath verifies config path resolution priority.
func TestResolveConfigPath(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv("INKWELL_CONFIG", "/from/env.yaml")

		if got := resolveConfigPath("/from/flag.yaml"); got != "/from/flag.yaml" {
			t.Errorf("resolveConfigPath() = %q, want flag value", got)
		}
	})

	t.Run("env beats default", func(t *testing.T) {
		t.Setenv("INKWELL_CONFIG", "/from/env.yaml")

		if got := resolveConfigPath(""); got != "/from/env.yaml" {
			t.Errorf("resolveConfigPath() = %q, want env value", got)
		}
	})

	t.Run("default fallback", func(t *testing.T) {
		t.Setenv("INKWELL_CONFIG", "")

		if got := resolveConfigPath(""); got != defaultConfigPath {
			t.Errorf("resolveConfigPath() = %q, want default", got)
		}
	})
}
