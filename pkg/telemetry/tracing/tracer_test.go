package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"p3a-hq/manifest/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  config.TracingConfig
		wantErr bool
	}{
		{
			name:   "disabled tracing",
			config: config.TracingConfig{Enabled: false, ServiceName: "p3ac"},
		},
		{
			name: "enabled with always sampler",
			config: config.TracingConfig{
				Enabled:     true,
				Sampler:     "always",
				Endpoint:    "localhost:4317",
				ServiceName: "p3ac",
				Insecure:    true,
				Timeout:     time.Second,
			},
		},
		{
			name: "enabled with ratio sampler",
			config: config.TracingConfig{
				Enabled:     true,
				Sampler:     "ratio",
				SampleRatio: 0.5,
				Endpoint:    "localhost:4317",
				ServiceName: "p3ac",
				Insecure:    true,
			},
		},
		{
			name: "invalid sampler",
			config: config.TracingConfig{
				Enabled:  true,
				Sampler:  "sometimes",
				Endpoint: "localhost:4317",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config, "test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer tracer.Shutdown(context.Background())

			if tracer.Enabled() != tt.config.Enabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.config.Enabled)
			}
			if tracer.Tracer() == nil {
				t.Error("Tracer() returned nil")
			}
		})
	}
}

func TestTracer_DisabledSpansAreNoop(t *testing.T) {
	tracer, err := New(config.TracingConfig{}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, span := tracer.Start(context.Background(), "p3ac.build")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Error("disabled tracer produced a valid span context")
	}
	if TraceID(ctx) != "" {
		t.Errorf("TraceID() = %q, want empty", TraceID(ctx))
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestTracer_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := newWithProvider(config.TracingConfig{Enabled: true}, provider)
	defer tracer.Shutdown(context.Background())

	ctx, span := tracer.Start(context.Background(), "p3ac.build")
	if TraceID(ctx) == "" {
		t.Error("TraceID() is empty inside a recorded span")
	}
	SetBuildAttributes(span, "b-1", "v2", 3)
	SetManifestAttributes(span, "dist/p3a_manifest.json", "abc", 42)
	AddEvent(span, "manifest.written", attribute.Int(AttrManifestSize, 42))
	SetError(span, errors.New("boom"))
	SetStatus(span, errors.New("boom"))
	span.End()

	_, entrySpan := tracer.Start(ctx, "p3ac.compile_entry", EntryAttributes("Brave.A", "metrics/Brave.A.yaml"))
	entrySpan.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(spans))
	}

	build := spans[0]
	if build.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", build.Status().Code)
	}

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range build.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrBuildID].AsString() != "b-1" {
		t.Errorf("%s = %q, want b-1", AttrBuildID, attrs[AttrBuildID].AsString())
	}
	if attrs[AttrEntries].AsInt64() != 3 {
		t.Errorf("%s = %d, want 3", AttrEntries, attrs[AttrEntries].AsInt64())
	}
	if attrs[AttrManifestDigest].AsString() != "abc" {
		t.Errorf("%s = %q, want abc", AttrManifestDigest, attrs[AttrManifestDigest].AsString())
	}
	if len(build.Events()) < 2 {
		t.Errorf("expected manifest and exception events, got %d", len(build.Events()))
	}

	entry := spans[1]
	if entry.Parent().SpanID() != build.SpanContext().SpanID() {
		t.Error("entry span is not a child of the build span")
	}
}

func TestSetStatus_OK(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("test").Start(context.Background(), "ok")
	SetError(span, nil)
	SetStatus(span, nil)
	span.End()

	got := recorder.Ended()[0]
	if got.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", got.Status().Code)
	}
	if len(got.Events()) != 0 {
		t.Errorf("SetError(nil) recorded %d events", len(got.Events()))
	}
}
