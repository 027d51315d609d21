// Package processing runs one p3ac build from start to finish.
//
// A Processor ties the declaration loader and the compiler to the ambient
// services around a build: it tags the context with a build ID, opens the
// build span, writes the manifest atomically, records build metrics, looks
// up the git commit the declarations came from and stores the outcome in
// the build history.
//
// # Basic Usage
//
//	proc, err := processing.NewProcessor(cfg, processing.Options{
//		Logger:    logger,
//		Tracer:    tracer,
//		Collector: collector,
//		History:   store,
//	})
//	if err != nil {
//		return err
//	}
//
//	report, err := proc.Build(ctx, processing.TriggerManual)
//	if err != nil {
//		// report.Result holds the diagnostics when validation failed.
//	}
//
// Check validates without writing the manifest or recording history; the
// lint command uses it.
//
// # Outcomes
//
// A build either writes the whole manifest or nothing. Validation failures
// are returned as *compiler.BuildError together with a Report whose Result
// carries every diagnostic. Other errors (an unreadable metrics directory,
// a failed write) leave Result nil or partial.
//
// The most recent Report is kept and served by Last, which the ops server
// reads for its status endpoint.
package processing
