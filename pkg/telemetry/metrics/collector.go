package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"p3a-hq/manifest/pkg/config"
)

// Collector owns the Prometheus registry and every p3ac metric. It
// implements compiler.Recorder. When metrics are disabled every method is
// a no-op, so callers never need to check.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	compile *CompileMetrics
	output  *OutputMetrics
}

// NewCollector creates a collector. A nil registry is replaced by a fresh
// one rather than the global default registry.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:   cfg,
		registry: registry,
		compile:  NewCompileMetrics(cfg.Namespace, registry),
		output:   NewOutputMetrics(cfg.Namespace, registry),
	}
}

// RecordDeclaration records one validated declaration.
func (c *Collector) RecordDeclaration(outcome string, violations int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.compile.RecordDeclaration(outcome, violations, duration)
}

// RecordCompile records a finished compile run.
func (c *Collector) RecordCompile(outcome string, declarations int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.compile.RecordRun(outcome, declarations, duration)
}

// RecordManifest records a written manifest of size bytes holding metrics
// entries.
func (c *Collector) RecordManifest(metrics, size int) {
	if !c.config.Enabled {
		return
	}
	c.output.RecordManifest(metrics, size, time.Now())
}

// RecordRebuild records a watch mode rebuild caused by trigger ("initial",
// "change").
func (c *Collector) RecordRebuild(trigger string) {
	if !c.config.Enabled {
		return
	}
	c.output.RecordRebuild(trigger)
}

// RecordPruned records build records removed by history retention.
func (c *Collector) RecordPruned(n int64) {
	if !c.config.Enabled {
		return
	}
	c.output.RecordPruned(n)
}

// Enabled reports whether metrics are recorded.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
