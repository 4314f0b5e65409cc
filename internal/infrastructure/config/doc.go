// Package config loads and validates Inkwell Core configuration.
//
// Configuration is layered:
//  1. Hardcoded defaults (Default)
//  2. YAML file values (configs/config.yaml)
//  3. Environment variable overrides (INKWELL_*)
//
// The environment overrides exist for the settings an operator is most
// likely to change per deployment without editing files:
//   - INKWELL_DATA_DIR   — relocate the data directory
//   - INKWELL_TEST_MODE  — in-memory journal for test runs
//   - INKWELL_SQL_LOG    — echo tuning/maintenance statement results
//   - INKWELL_LOG_LEVEL  — logging verbosity
//
// Validation runs on every Load; a config that fails validation is treated
// as a fatal startup error by cmd/inkwell.
package config
