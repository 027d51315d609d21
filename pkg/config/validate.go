package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"

	"p3a-hq/manifest/pkg/mdl/grammar"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "output.path").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any rule fails. All errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateSource(cfg)...)
	errs = append(errs, validateCompiler(cfg)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateServing(cfg)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateSource(cfg *Config) []FieldError {
	var errs []FieldError

	if cfg.Metrics.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "metrics.dir",
			Message: "metrics directory is required",
		})
	}
	for i, ext := range cfg.Metrics.Extensions {
		if strings.TrimPrefix(ext, ".") == "" || strings.ContainsAny(ext, `/\`) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("metrics.extensions[%d]", i),
				Message: fmt.Sprintf("invalid file extension %q", ext),
			})
		}
	}
	if cfg.Output.Path == "" {
		errs = append(errs, FieldError{
			Field:   "output.path",
			Message: "output path is required",
		})
	}

	return errs
}

func validateCompiler(cfg *Config) []FieldError {
	var errs []FieldError

	if _, err := grammar.ParseGeneration(cfg.Schema.Generation); err != nil {
		errs = append(errs, FieldError{
			Field:   "schema.generation",
			Message: err.Error(),
		})
	}
	if cfg.Compiler.Workers < 1 {
		errs = append(errs, FieldError{
			Field:   "compiler.workers",
			Message: "workers must be at least 1",
		})
	}
	if cfg.Compiler.ContextLines < 0 {
		errs = append(errs, FieldError{
			Field:   "compiler.context_lines",
			Message: "context lines must not be negative",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	switch cfg.Tracing.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}

func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "history.path",
			Message: "history path is required when history is enabled",
		})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention_days",
			Message: "retention days must not be negative",
		})
	}
	if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "history.prune_schedule",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.PruneSchedule, err),
		})
	}

	return errs
}

func validateServing(cfg *Config) []FieldError {
	var errs []FieldError

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "watch.debounce",
			Message: "debounce must not be negative",
		})
	}
	if cfg.Server.Enabled {
		if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
			errs = append(errs, FieldError{
				Field:   "server.listen_address",
				Message: fmt.Sprintf("invalid listen address %q: %v", cfg.Server.ListenAddress, err),
			})
		}
	}
	if cfg.Server.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must not be negative",
		})
	}

	return errs
}
