package compiler

import (
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Recorder receives build measurements. The metrics collector implements it.
type Recorder interface {
	// RecordDeclaration is called once per entry.
	RecordDeclaration(outcome string, violations int, duration time.Duration)

	// RecordCompile is called once per run.
	RecordCompile(outcome string, declarations int, duration time.Duration)
}

// Outcomes passed to Recorder.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithWorkers validates up to n entries concurrently. Values below 2 keep
// validation sequential.
func WithWorkers(n int) Option {
	return func(c *Compiler) {
		if n < 1 {
			n = 1
		}
		c.workers = n
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer sets the tracer used for run and entry spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Compiler) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithRecorder sets where build measurements go.
func WithRecorder(r Recorder) Option {
	return func(c *Compiler) {
		c.recorder = r
	}
}

// WithContextLines sets how many source lines around a violation are kept
// in its Context. Zero disables context extraction.
func WithContextLines(n int) Option {
	return func(c *Compiler) {
		c.contextLines = max(n, 0)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("p3ac")
}
