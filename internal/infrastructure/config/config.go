package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Inkwell Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig contains embedded database and filesystem settings.
type StorageConfig struct {
	// DataDir is the directory holding the database file and upload tree.
	// The directory is created on startup if it doesn't exist.
	DataDir string `yaml:"data_dir"`

	// Engine selects the storage backend. Only "sqlite" receives
	// engine-specific tuning and maintenance operations; any other value
	// is treated as an external SQL engine reached via Driver/DSN.
	Engine string `yaml:"engine"`

	// Driver is the database/sql driver name for non-sqlite engines.
	// Ignored when Engine is "sqlite".
	Driver string `yaml:"driver,omitempty"`

	// DSN is the connection string for non-sqlite engines.
	// Ignored when Engine is "sqlite".
	DSN string `yaml:"dsn,omitempty"`

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	// Prevents "database is locked" errors under contention.
	BusyTimeout int `yaml:"busy_timeout"`

	// CacheSizeKB is the page-cache budget handed to SQLite, in kibibytes.
	// Passed as a negative cache_size pragma value (SQLite's KB convention).
	CacheSizeKB int `yaml:"cache_size_kb"`

	// TestMode switches the journal to an in-memory mode instead of WAL.
	// Only set by the test harness; never enable on a real deployment.
	TestMode bool `yaml:"test_mode"`

	// LogStatements echoes tuning and maintenance statement results at
	// debug level. Usually toggled via INKWELL_SQL_LOG rather than YAML.
	LogStatements bool `yaml:"log_statements"`

	// CloseSettleSeconds is how long the shutdown coordinator waits after
	// each pool close attempt for an asynchronous failure to surface.
	CloseSettleSeconds int `yaml:"close_settle_seconds"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: INKWELL_KEY
// For example: INKWELL_DATA_DIR, INKWELL_SQL_LOG
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults.
// Used directly by tests and as the base layer for Load.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir:            "./data",
			Engine:             "sqlite",
			BusyTimeout:        5,
			CacheSizeKB:        10240,
			CloseSettleSeconds: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: INKWELL_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INKWELL_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("INKWELL_TEST_MODE"); v != "" {
		cfg.Storage.TestMode = isTruthy(v)
	}
	if v := os.Getenv("INKWELL_SQL_LOG"); v != "" {
		cfg.Storage.LogStatements = isTruthy(v)
	}
	if v := os.Getenv("INKWELL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// isTruthy interprets common boolean environment variable spellings.
func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Storage.DataDir == "" {
		errs = append(errs, "storage.data_dir is required")
	}
	if c.Storage.Engine == "" {
		errs = append(errs, "storage.engine is required")
	}
	if c.Storage.Engine != "sqlite" {
		if c.Storage.Driver == "" {
			errs = append(errs, "storage.driver is required for non-sqlite engines")
		}
		if c.Storage.DSN == "" {
			errs = append(errs, "storage.dsn is required for non-sqlite engines")
		}
	}
	if c.Storage.BusyTimeout < 0 {
		errs = append(errs, "storage.busy_timeout must not be negative")
	}
	if c.Storage.CacheSizeKB < 0 {
		errs = append(errs, "storage.cache_size_kb must not be negative")
	}
	if c.Storage.CloseSettleSeconds < 0 {
		errs = append(errs, "storage.close_settle_seconds must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// CloseSettle returns the shutdown settle window as a Duration.
func (c *Config) CloseSettle() time.Duration {
	return time.Duration(c.Storage.CloseSettleSeconds) * time.Second
}
