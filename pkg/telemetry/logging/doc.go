// Package logging provides structured logging for p3ac.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON and text output
//   - Configurable log levels (debug, info, warn, error)
//   - Build fields (build ID, generation, metric) taken from the context
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	ctx = logging.WithBuildID(ctx, id)
//	logger.InfoContext(ctx, "build started", "declarations", 42)
//
// Components that accept a *slog.Logger receive logger.Slog(); records
// they log with a context still pick up the build fields.
package logging
