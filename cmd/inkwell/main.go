// Inkwell Core - self-hosted notebook service
//
// This is the main entry point for the Inkwell Core application.
// It owns process startup and shutdown around the embedded database:
// directory guard, connection and migrations, and the deterministic
// pool close sequence on exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/inkwell-sh/inkwell-core/migrations"

	"github.com/inkwell-sh/inkwell-core/internal/infrastructure/config"
	"github.com/inkwell-sh/inkwell-core/internal/infrastructure/database"
	"github.com/inkwell-sh/inkwell-core/internal/infrastructure/logging"
	"github.com/inkwell-sh/inkwell-core/internal/settings"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command-line arguments (without the program name)
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("inkwell", flag.ContinueOnError)
	configPath := flags.String("config", "", "path to the configuration file")
	dataDir := flags.String("data-dir", "", "data directory override")
	if err := flags.Parse(args); err != nil {
		return err
	}

	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Inkwell Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	cfgPath := resolveConfigPath(*configPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", cfgPath)

	// A launch argument beats both the file and the environment.
	if *dataDir != "" {
		cfg.Storage.DataDir = *dataDir
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Bring up the database: directories, connection, migrations
	mgr := database.NewManager(cfg.Storage, log)
	if err := mgr.EnsureDirs(); err != nil {
		return fmt.Errorf("preparing data directories: %w", err)
	}

	engine, err := mgr.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := mgr.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database ready", "engine", engine.String(), "data_dir", mgr.Layout().DataDir)

	// Plugins read from the default data tree only; a relocated
	// deployment runs without them.
	if !mgr.Layout().IsDefault() {
		log.Info("plugin subsystem disabled", "reason", "non-default data directory")
	}

	if engine == database.EngineSQLite {
		if size, sizeErr := mgr.Size(); sizeErr == nil {
			log.Info("database size", "bytes", size)
		}
	}

	// Record the startup in the settings store
	store := settings.NewStore(mgr.Handle())
	if err := store.Set(ctx, "last_started_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("recording startup: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// The deferred Close() drains the pool and retries until the close
	// is verifiably clean.

	log.Info("Inkwell Core stopped")
	return nil
}

// resolveConfigPath returns the configuration file path.
// Priority: --config flag, INKWELL_CONFIG environment variable, default.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if path := os.Getenv("INKWELL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
