package config

import "time"

// Default values for configuration fields.
const (
	// Source and output defaults
	DefaultMetricsDir      = "metrics"
	DefaultMetricExtension = ".yaml"
	DefaultOutputPath      = "dist/p3a_manifest.json"

	// Compiler defaults
	DefaultGeneration   = "v2"
	DefaultWorkers      = 1
	DefaultContextLines = 2

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "p3ac"
	DefaultTracingEnabled     = false
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "p3ac"
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingTimeout     = 10 * time.Second

	// History defaults
	DefaultHistoryEnabled       = false
	DefaultHistoryPath          = "dist/p3ac-history.db"
	DefaultHistoryRetentionDays = 30
	DefaultHistoryPruneSchedule = "0 3 * * *"

	// Watch and server defaults
	DefaultWatchDebounce         = 200 * time.Millisecond
	DefaultServerEnabled         = true
	DefaultServerListenAddress   = "127.0.0.1:9464"
	DefaultServerShutdownTimeout = 5 * time.Second

	DefaultProvenanceEnabled = true
)

// Default returns a configuration with every field set to its default.
// Boolean switches that default to true can only be turned off when the
// file is decoded on top of this value, so LoadConfig starts from it.
func Default() *Config {
	cfg := &Config{
		Compiler: CompilerConfig{ContextLines: DefaultContextLines},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{
				Enabled:     DefaultTracingEnabled,
				SampleRatio: DefaultTracingSampleRatio,
			},
		},
		History:    HistoryConfig{Enabled: DefaultHistoryEnabled, RetentionDays: DefaultHistoryRetentionDays},
		Server:     ServerConfig{Enabled: DefaultServerEnabled},
		Provenance: ProvenanceConfig{Enabled: DefaultProvenanceEnabled},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets defaults for any fields that have zero values.
// It is idempotent. Numeric fields where zero is meaningful, such as
// history retention, context lines and the sample ratio, are left alone.
func ApplyDefaults(cfg *Config) {
	if cfg.Metrics.Dir == "" {
		cfg.Metrics.Dir = DefaultMetricsDir
	}
	if len(cfg.Metrics.Extensions) == 0 {
		cfg.Metrics.Extensions = []string{DefaultMetricExtension}
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = DefaultOutputPath
	}

	if cfg.Schema.Generation == "" {
		cfg.Schema.Generation = DefaultGeneration
	}
	if cfg.Compiler.Workers == 0 {
		cfg.Compiler.Workers = DefaultWorkers
	}

	applyTelemetryDefaults(&cfg.Telemetry)

	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.History.PruneSchedule == "" {
		cfg.History.PruneSchedule = DefaultHistoryPruneSchedule
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultServerListenAddress
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}

	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}

	if t.Tracing.Endpoint == "" {
		t.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingServiceName
	}
	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.Timeout == 0 {
		t.Tracing.Timeout = DefaultTracingTimeout
	}
}
