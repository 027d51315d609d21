package config

import "time"

// Config is the root configuration structure for p3ac.
// It covers where declarations are read from, where the manifest is
// written, how compilation runs and the observability around it.
type Config struct {
	// Metrics describes the directory of metric declaration files.
	Metrics MetricsSourceConfig `yaml:"metrics"`

	// Output describes where the compiled manifest is written.
	Output OutputConfig `yaml:"output"`

	// Schema selects the definition grammar generation.
	Schema SchemaConfig `yaml:"schema"`

	// Compiler contains compilation settings such as the worker count.
	Compiler CompilerConfig `yaml:"compiler"`

	// Telemetry contains configuration for logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// History configures the build history store and its retention.
	History HistoryConfig `yaml:"history"`

	// Watch configures rebuild-on-change mode.
	Watch WatchConfig `yaml:"watch"`

	// Server configures the ops HTTP server used in watch mode.
	Server ServerConfig `yaml:"server"`

	// Provenance controls whether builds record the git commit they were
	// built from.
	Provenance ProvenanceConfig `yaml:"provenance"`
}

// MetricsSourceConfig contains the declaration source settings.
type MetricsSourceConfig struct {
	// Dir is the directory holding one declaration file per metric.
	// Default: "metrics"
	Dir string `yaml:"dir"`

	// Extensions lists the file extensions treated as declarations.
	// Default: [".yaml"]
	Extensions []string `yaml:"extensions"`
}

// OutputConfig contains manifest output settings.
type OutputConfig struct {
	// Path is the manifest file path. The parent directory is created
	// when missing.
	// Default: "dist/p3a_manifest.json"
	Path string `yaml:"path"`
}

// SchemaConfig selects the definition grammar.
type SchemaConfig struct {
	// Generation is "v2" (compositional) or "v1" (flat).
	// Default: "v2"
	Generation string `yaml:"generation"`
}

// CompilerConfig contains compilation settings.
type CompilerConfig struct {
	// Workers is the number of declarations validated concurrently.
	// 1 validates sequentially.
	// Default: 1
	Workers int `yaml:"workers"`

	// ContextLines is the number of source lines shown around a violation
	// in console output. 0 disables source excerpts.
	// Default: 2
	ContextLines int `yaml:"context_lines"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures build metrics.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing configures OpenTelemetry tracing.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn" or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes source file and line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains build metrics settings.
type MetricsConfig struct {
	// Enabled turns build metrics on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path metrics are served on in watch mode.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "p3ac"
	Namespace string `yaml:"namespace"`

	// TextfilePath, when set, makes one-shot builds write their metrics in
	// the Prometheus text format for a node exporter textfile collector.
	TextfilePath string `yaml:"textfile_path"`
}

// TracingConfig contains OpenTelemetry tracing settings.
type TracingConfig struct {
	// Enabled turns span export on. When disabled a no-op tracer is used.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "p3ac"
	ServiceName string `yaml:"service_name"`

	// Sampler is "always", "never" or "ratio".
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is used by the "ratio" sampler, between 0 and 1.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS towards the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HistoryConfig contains build history settings.
type HistoryConfig struct {
	// Enabled records every build in the history store.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file.
	// Default: "dist/p3ac-history.db"
	Path string `yaml:"path"`

	// RetentionDays is how long build records are kept. 0 keeps them forever.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is the cron expression for pruning in watch mode.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// WatchConfig contains watch mode settings.
type WatchConfig struct {
	// Debounce is the quiet period after a change before rebuilding.
	// Default: 200ms
	Debounce time.Duration `yaml:"debounce"`
}

// ServerConfig contains ops HTTP server settings.
type ServerConfig struct {
	// Enabled starts the ops server in watch mode.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the ops server binds to.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 5s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ProvenanceConfig contains git provenance settings.
type ProvenanceConfig struct {
	// Enabled looks up the enclosing git repository of the metrics
	// directory and records its HEAD commit with each build.
	// Default: true
	Enabled bool `yaml:"enabled"`
}
