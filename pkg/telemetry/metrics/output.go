package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutputMetrics tracks the written manifest and watch mode rebuilds.
//
// Metrics:
//   - p3ac_manifest_metrics: Metrics in the last written manifest
//   - p3ac_manifest_bytes: Size of the last written manifest
//   - p3ac_last_success_timestamp_seconds: Unix time of the last successful build
//   - p3ac_rebuilds_total: Watch mode rebuilds by trigger
//   - p3ac_history_pruned_total: Build records removed by retention
type OutputMetrics struct {
	manifestMetrics prometheus.Gauge
	manifestBytes   prometheus.Gauge
	lastSuccess     prometheus.Gauge
	rebuildsTotal   *prometheus.CounterVec
	prunedTotal     prometheus.Counter
}

// NewOutputMetrics creates and registers output metrics with registry.
func NewOutputMetrics(namespace string, registry prometheus.Registerer) *OutputMetrics {
	om := &OutputMetrics{
		manifestMetrics: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "manifest_metrics",
			Help:      "Number of metrics in the last written manifest",
		}),
		manifestBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "manifest_bytes",
			Help:      "Size in bytes of the last written manifest",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful build",
		}),
		rebuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rebuilds_total",
				Help:      "Total number of watch mode rebuilds",
			},
			[]string{"trigger"},
		),
		prunedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_pruned_total",
			Help:      "Total number of build records removed by retention",
		}),
	}

	registry.MustRegister(
		om.manifestMetrics,
		om.manifestBytes,
		om.lastSuccess,
		om.rebuildsTotal,
		om.prunedTotal,
	)

	return om
}

// RecordManifest records a written manifest.
func (om *OutputMetrics) RecordManifest(metrics, size int, at time.Time) {
	om.manifestMetrics.Set(float64(metrics))
	om.manifestBytes.Set(float64(size))
	om.lastSuccess.Set(float64(at.Unix()))
}

// RecordRebuild records a watch mode rebuild.
func (om *OutputMetrics) RecordRebuild(trigger string) {
	om.rebuildsTotal.WithLabelValues(trigger).Inc()
}

// RecordPruned records build records removed by retention.
func (om *OutputMetrics) RecordPruned(n int64) {
	if n > 0 {
		om.prunedTotal.Add(float64(n))
	}
}
