// Package tracing provides OpenTelemetry tracing for p3ac builds.
//
// A build produces one "p3ac.build" span with a "p3ac.compile" child and
// one "p3ac.compile_entry" span per declaration. Spans are exported over
// OTLP gRPC when tracing is enabled; otherwise a no-op tracer is used and
// instrumentation costs next to nothing.
//
// # Sampling Strategies
//
//   - always: Sample all builds
//   - never: Sample no builds
//   - ratio: Sample a fraction of builds by trace ID
//
// # Usage
//
//	tracer, err := tracing.New(cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	c := compiler.New(s, compiler.WithTracer(tracer.Tracer()))
package tracing
