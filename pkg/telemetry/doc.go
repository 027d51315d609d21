// Package telemetry groups the observability of p3ac builds.
//
// # Components
//
//   - logging: Structured logging with build-scoped context fields
//   - metrics: Prometheus metrics for compile runs and manifest output
//   - tracing: OpenTelemetry spans for builds and per-declaration validation
//   - health: Liveness and readiness checks for watch mode
//
// # Usage
//
//	logger, _ := logging.New(logging.Config{Level: "info", Format: "json"})
//	tracer, _ := tracing.New(cfg.Telemetry.Tracing, version)
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//
//	ctx, span := tracer.Start(ctx, "p3ac.build")
//	defer span.End()
//	collector.RecordManifest(report.Metrics(), report.Size)
//
// One-shot commands export metrics to a textfile; watch mode serves them
// over HTTP alongside the health endpoints.
package telemetry
