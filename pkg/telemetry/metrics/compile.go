package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CompileMetrics tracks compilation runs and per-declaration validation.
//
// Metrics:
//   - p3ac_compile_runs_total: Compile runs by outcome
//   - p3ac_compile_duration_seconds: Compile run duration
//   - p3ac_compile_declarations: Declarations seen by the last run
//   - p3ac_declarations_total: Validated declarations by outcome
//   - p3ac_declaration_duration_seconds: Per-declaration validation time
//   - p3ac_violations_total: Violations reported across all declarations
type CompileMetrics struct {
	runsTotal           *prometheus.CounterVec
	runDuration         *prometheus.HistogramVec
	lastDeclarations    prometheus.Gauge
	declarationsTotal   *prometheus.CounterVec
	declarationDuration prometheus.Histogram
	violationsTotal     prometheus.Counter
}

// NewCompileMetrics creates and registers compile metrics with registry.
func NewCompileMetrics(namespace string, registry prometheus.Registerer) *CompileMetrics {
	cm := &CompileMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compile_runs_total",
				Help:      "Total number of compile runs",
			},
			[]string{"outcome"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compile_duration_seconds",
				Help:      "Duration of compile runs in seconds",
				// A few hundred declarations compile in well under a second.
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to 8s
			},
			[]string{"outcome"},
		),

		lastDeclarations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "compile_declarations",
				Help:      "Number of declarations seen by the last compile run",
			},
		),

		declarationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "declarations_total",
				Help:      "Total number of validated declarations",
			},
			[]string{"outcome"},
		),

		declarationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "declaration_duration_seconds",
				Help:      "Duration of single declaration validation in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 15), // 10µs to 160ms
			},
		),

		violationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "violations_total",
				Help:      "Total number of violations reported",
			},
		),
	}

	registry.MustRegister(
		cm.runsTotal,
		cm.runDuration,
		cm.lastDeclarations,
		cm.declarationsTotal,
		cm.declarationDuration,
		cm.violationsTotal,
	)

	return cm
}

// RecordRun records a finished compile run.
func (cm *CompileMetrics) RecordRun(outcome string, declarations int, duration time.Duration) {
	cm.runsTotal.WithLabelValues(outcome).Inc()
	cm.runDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	cm.lastDeclarations.Set(float64(declarations))
}

// RecordDeclaration records one validated declaration.
func (cm *CompileMetrics) RecordDeclaration(outcome string, violations int, duration time.Duration) {
	cm.declarationsTotal.WithLabelValues(outcome).Inc()
	cm.declarationDuration.Observe(duration.Seconds())
	if violations > 0 {
		cm.violationsTotal.Add(float64(violations))
	}
}
