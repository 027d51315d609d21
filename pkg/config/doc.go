// Package config provides configuration management for p3ac.
//
// Configuration is read from a YAML file, completed with defaults and
// overridden by environment variables:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("p3ac.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention P3AC_SECTION_FIELD.
// For example:
//
//   - P3AC_METRICS_DIR overrides metrics.dir
//   - P3AC_OUTPUT_PATH overrides output.path
//   - P3AC_SCHEMA_GENERATION overrides schema.generation
//   - P3AC_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Built-in defaults
//  2. The configuration file
//  3. Environment variables
//  4. Command line flags, applied by the caller
//
// The configuration is passed explicitly to the components that need it;
// there is no package-level instance.
package config
