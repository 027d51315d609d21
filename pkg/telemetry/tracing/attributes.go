package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on p3ac spans. Custom keys use the "p3ac." namespace.
const (
	AttrBuildID    = "p3ac.build_id"
	AttrGeneration = "p3ac.generation"
	AttrEntries    = "p3ac.entries"
	AttrWorkers    = "p3ac.workers"
	AttrFailed     = "p3ac.failed"
	AttrViolations = "p3ac.violations"

	AttrMetric = "p3ac.metric"
	AttrPath   = "p3ac.path"

	AttrManifestPath   = "p3ac.manifest.path"
	AttrManifestDigest = "p3ac.manifest.digest"
	AttrManifestSize   = "p3ac.manifest.bytes"

	AttrCommit = "vcs.commit"

	AttrErrorMessage = "error.message"
)

// SetBuildAttributes sets the attributes describing a build on span.
func SetBuildAttributes(span trace.Span, buildID, generation string, entries int) {
	span.SetAttributes(
		attribute.String(AttrBuildID, buildID),
		attribute.String(AttrGeneration, generation),
		attribute.Int(AttrEntries, entries),
	)
}

// SetManifestAttributes sets the attributes describing a written manifest.
func SetManifestAttributes(span trace.Span, path, digest string, size int) {
	span.SetAttributes(
		attribute.String(AttrManifestPath, path),
		attribute.String(AttrManifestDigest, digest),
		attribute.Int(AttrManifestSize, size),
	)
}

// EntryAttributes returns the start attributes of a per-declaration span.
func EntryAttributes(metric, path string) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String(AttrMetric, metric),
		attribute.String(AttrPath, path),
	)
}

// AddEvent adds an event to the span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
