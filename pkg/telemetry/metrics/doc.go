// Package metrics provides Prometheus metrics for p3ac builds.
//
// # Metrics Categories
//
//   - Compile metrics: runs, run duration, declarations and violations
//   - Output metrics: manifest size, last success time, watch rebuilds and
//     history pruning
//
// # Usage
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	c := compiler.New(s, compiler.WithRecorder(collector))
//
// In watch mode the collector is served by the ops server:
//
//	r.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// One-shot builds can leave their metrics for node exporter:
//
//	collector.WriteTextfile("/var/lib/node_exporter/p3ac.prom")
package metrics
