package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "p3ac.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
metrics:
  dir: "definitions"
  extensions: [".yaml", ".yml"]
output:
  path: "build/manifest.json"
schema:
  generation: "v1"
compiler:
  workers: 8
telemetry:
  logging:
    level: "debug"
    format: "json"
  metrics:
    enabled: false
history:
  enabled: true
  retention_days: 0
watch:
  debounce: "1s"
server:
  enabled: false
provenance:
  enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Metrics.Dir != "definitions" {
		t.Errorf("expected metrics dir %q, got %q", "definitions", cfg.Metrics.Dir)
	}
	if len(cfg.Metrics.Extensions) != 2 {
		t.Errorf("expected 2 extensions, got %v", cfg.Metrics.Extensions)
	}
	if cfg.Output.Path != "build/manifest.json" {
		t.Errorf("expected output path %q, got %q", "build/manifest.json", cfg.Output.Path)
	}
	if cfg.Schema.Generation != "v1" {
		t.Errorf("expected generation v1, got %q", cfg.Schema.Generation)
	}
	if cfg.Compiler.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Compiler.Workers)
	}
	if cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("expected json logging, got %q", cfg.Telemetry.Logging.Format)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected debounce 1s, got %v", cfg.Watch.Debounce)
	}

	// Switches that default to true must be turnable off.
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics to be disabled")
	}
	if cfg.Server.Enabled {
		t.Error("expected server to be disabled")
	}
	if cfg.Provenance.Enabled {
		t.Error("expected provenance to be disabled")
	}
	if cfg.History.RetentionDays != 0 {
		t.Errorf("expected explicit retention 0 to be kept, got %d", cfg.History.RetentionDays)
	}

	// Unset fields take defaults.
	if cfg.Telemetry.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("expected default namespace, got %q", cfg.Telemetry.Metrics.Namespace)
	}
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("failed to load empty config: %v", err)
	}
	if cfg.Output.Path != DefaultOutputPath {
		t.Errorf("expected default output path, got %q", cfg.Output.Path)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			content: "metrics: [unclosed",
			wantErr: "failed to parse",
		},
		{
			name:    "unknown key",
			content: "metrics:\n  directory: x\n",
			wantErr: "directory",
		},
		{
			name:    "invalid generation",
			content: "schema:\n  generation: v3\n",
			wantErr: "schema.generation",
		},
		{
			name:    "invalid cron",
			content: "history:\n  prune_schedule: every day\n",
			wantErr: "history.prune_schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
output:
  path: "file.json"
telemetry:
  logging:
    level: "info"
`)

	t.Setenv("P3AC_OUTPUT_PATH", "env.json")
	t.Setenv("P3AC_TELEMETRY_LOGGING_LEVEL", "debug")
	t.Setenv("P3AC_COMPILER_WORKERS", "3")
	t.Setenv("P3AC_METRICS_EXTENSIONS", ".yaml, .yml")
	t.Setenv("P3AC_WATCH_DEBOUNCE", "750ms")
	t.Setenv("P3AC_PROVENANCE_ENABLED", "false")
	t.Setenv("P3AC_SERVER_ENABLED", "false")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Output.Path != "env.json" {
		t.Errorf("expected output path from env, got %q", cfg.Output.Path)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level from env, got %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Compiler.Workers != 3 {
		t.Errorf("expected 3 workers from env, got %d", cfg.Compiler.Workers)
	}
	if len(cfg.Metrics.Extensions) != 2 || cfg.Metrics.Extensions[1] != ".yml" {
		t.Errorf("expected extensions from env, got %v", cfg.Metrics.Extensions)
	}
	if cfg.Watch.Debounce != 750*time.Millisecond {
		t.Errorf("expected debounce from env, got %v", cfg.Watch.Debounce)
	}
	if cfg.Provenance.Enabled {
		t.Error("expected provenance disabled from env")
	}
	if cfg.Server.Enabled {
		t.Error("expected server disabled from env")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidEnvValues(t *testing.T) {
	path := writeConfig(t, "compiler:\n  workers: 2\n")

	t.Setenv("P3AC_COMPILER_WORKERS", "many")
	t.Setenv("P3AC_WATCH_DEBOUNCE", "soon")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Compiler.Workers != 2 {
		t.Errorf("expected unparseable override to be ignored, got %d workers", cfg.Compiler.Workers)
	}
	if cfg.Watch.Debounce != DefaultWatchDebounce {
		t.Errorf("expected default debounce, got %v", cfg.Watch.Debounce)
	}
}

func TestLoadConfigWithEnvOverrides_OverrideFailsValidation(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("P3AC_SCHEMA_GENERATION", "v9")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil {
		t.Fatal("expected validation error after override")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("P3AC_METRICS_DIR", "elsewhere")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("expected defaults without a config file, got %v", err)
	}
	if cfg.Metrics.Dir != "elsewhere" {
		t.Errorf("expected metrics dir from env, got %q", cfg.Metrics.Dir)
	}
}
