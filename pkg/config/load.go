package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file looked up in the working
// directory when no path is given.
const DefaultConfigFile = "p3ac.yaml"

// envPrefix prefixes every environment override.
const envPrefix = "P3AC_"

// LoadConfig loads configuration from a YAML file at the specified path.
// Values missing from the file take their defaults. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration and applies P3AC_*
// environment variable overrides on top of it. Environment variables
// always take precedence over file-based configuration.
//
// An empty path looks for DefaultConfigFile and falls back to the built-in
// defaults when it does not exist. An explicit path must exist.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)

	switch {
	case path != "":
		cfg, err = LoadConfig(path)
	default:
		cfg, err = LoadConfig(DefaultConfigFile)
		if errors.Is(err, fs.ErrNotExist) {
			cfg, err = Default(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg, os.Getenv)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides. Variables use
// the form P3AC_SECTION_FIELD. Unparseable values are ignored and leave the
// loaded value in place.
func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	env := func(name string) string {
		return getenv(envPrefix + name)
	}

	if val := env("METRICS_DIR"); val != "" {
		cfg.Metrics.Dir = val
	}
	if val := env("METRICS_EXTENSIONS"); val != "" {
		cfg.Metrics.Extensions = splitList(val)
	}
	if val := env("OUTPUT_PATH"); val != "" {
		cfg.Output.Path = val
	}
	if val := env("SCHEMA_GENERATION"); val != "" {
		cfg.Schema.Generation = val
	}
	if val := env("COMPILER_WORKERS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Compiler.Workers = n
		}
	}
	if val := env("COMPILER_CONTEXT_LINES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Compiler.ContextLines = n
		}
	}

	// Telemetry overrides
	if val := env("TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := env("TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := env("TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := env("TELEMETRY_METRICS_TEXTFILE_PATH"); val != "" {
		cfg.Telemetry.Metrics.TextfilePath = val
	}
	if val := env("TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := env("TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := env("TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}

	// History overrides
	if val := env("HISTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Enabled = b
		}
	}
	if val := env("HISTORY_PATH"); val != "" {
		cfg.History.Path = val
	}
	if val := env("HISTORY_RETENTION_DAYS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.History.RetentionDays = n
		}
	}

	if val := env("WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.Debounce = d
		}
	}
	if val := env("SERVER_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.Enabled = b
		}
	}
	if val := env("SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := env("PROVENANCE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Provenance.Enabled = b
		}
	}
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
