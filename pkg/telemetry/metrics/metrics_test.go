package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"p3a-hq/manifest/pkg/config"
	"p3a-hq/manifest/pkg/mdl/compiler"
)

func testConfig() config.MetricsConfig {
	return config.MetricsConfig{
		Enabled:   true,
		Namespace: "test",
	}
}

// The collector must satisfy the compiler's recorder.
var _ compiler.Recorder = (*Collector)(nil)

func TestCollector_NewCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(testConfig(), registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
	if !collector.Enabled() {
		t.Error("expected collector to be enabled")
	}

	fresh := NewCollector(config.MetricsConfig{Enabled: true}, nil)
	if fresh.Registry() == nil {
		t.Fatal("expected a registry to be created")
	}
	if fresh.config.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("namespace = %q, want default", fresh.config.Namespace)
	}
}

func TestCollector_RecordDeclaration(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordDeclaration(compiler.OutcomeSuccess, 0, time.Millisecond)
	collector.RecordDeclaration(compiler.OutcomeSuccess, 0, time.Millisecond)
	collector.RecordDeclaration(compiler.OutcomeFailure, 3, time.Millisecond)

	tests := []struct {
		name    string
		outcome string
		want    float64
	}{
		{"success", compiler.OutcomeSuccess, 2},
		{"failure", compiler.OutcomeFailure, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testutil.ToFloat64(collector.compile.declarationsTotal.WithLabelValues(tt.outcome))
			if got != tt.want {
				t.Errorf("declarations_total{outcome=%q} = %v, want %v", tt.outcome, got, tt.want)
			}
		})
	}

	if got := testutil.ToFloat64(collector.compile.violationsTotal); got != 3 {
		t.Errorf("violations_total = %v, want 3", got)
	}
	if got := testutil.CollectAndCount(collector.compile.declarationDuration); got != 1 {
		t.Errorf("declaration_duration_seconds series = %d, want 1", got)
	}
}

func TestCollector_RecordCompile(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordCompile(compiler.OutcomeFailure, 7, 20*time.Millisecond)
	collector.RecordCompile(compiler.OutcomeSuccess, 5, 10*time.Millisecond)

	if got := testutil.ToFloat64(collector.compile.runsTotal.WithLabelValues(compiler.OutcomeSuccess)); got != 1 {
		t.Errorf("compile_runs_total{outcome=success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.compile.lastDeclarations); got != 5 {
		t.Errorf("compile_declarations = %v, want 5 from the last run", got)
	}

	expected := `
# HELP test_compile_runs_total Total number of compile runs
# TYPE test_compile_runs_total counter
test_compile_runs_total{outcome="failure"} 1
test_compile_runs_total{outcome="success"} 1
`
	if err := testutil.CollectAndCompare(collector.compile.runsTotal, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected compile_runs_total: %v", err)
	}
}

func TestCollector_Output(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordManifest(12, 4096)
	collector.RecordRebuild("initial")
	collector.RecordRebuild("change")
	collector.RecordRebuild("change")
	collector.RecordPruned(4)
	collector.RecordPruned(0)

	if got := testutil.ToFloat64(collector.output.manifestMetrics); got != 12 {
		t.Errorf("manifest_metrics = %v, want 12", got)
	}
	if got := testutil.ToFloat64(collector.output.manifestBytes); got != 4096 {
		t.Errorf("manifest_bytes = %v, want 4096", got)
	}
	if got := testutil.ToFloat64(collector.output.lastSuccess); got <= 0 {
		t.Errorf("last_success_timestamp_seconds = %v, want > 0", got)
	}
	if got := testutil.ToFloat64(collector.output.rebuildsTotal.WithLabelValues("change")); got != 2 {
		t.Errorf("rebuilds_total{trigger=change} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.output.prunedTotal); got != 4 {
		t.Errorf("history_pruned_total = %v, want 4", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, nil)

	collector.RecordDeclaration(compiler.OutcomeFailure, 2, time.Millisecond)
	collector.RecordCompile(compiler.OutcomeFailure, 1, time.Millisecond)
	collector.RecordManifest(1, 1)
	collector.RecordRebuild("change")

	if got := testutil.ToFloat64(collector.compile.violationsTotal); got != 0 {
		t.Errorf("violations_total = %v, want 0 when disabled", got)
	}
	if got := testutil.CollectAndCount(collector.compile.runsTotal); got != 0 {
		t.Errorf("compile_runs_total series = %d, want 0 when disabled", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordCompile(compiler.OutcomeSuccess, 3, time.Millisecond)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `test_compile_runs_total{outcome="success"} 1`) {
		t.Errorf("metrics output missing compile runs:\n%s", rec.Body.String())
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordManifest(2, 100)

	path := filepath.Join(t.TempDir(), "p3ac.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}
	if !strings.Contains(string(data), "test_manifest_metrics 2") {
		t.Errorf("textfile missing manifest_metrics:\n%s", data)
	}

	if err := collector.WriteTextfile(filepath.Join(t.TempDir(), "missing", "p3ac.prom")); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
