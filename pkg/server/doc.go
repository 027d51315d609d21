// Package server provides the ops HTTP server p3ac runs in watch mode.
//
// The server exposes the state of the running compiler, never the manifest
// itself:
//
//	GET /health         liveness
//	GET /ready          readiness: last build succeeded, history reachable
//	GET /version        binary version
//	GET /metrics        Prometheus metrics (path configurable)
//	GET /status         summary of the latest build
//	GET /builds         recent builds from the history store
//	GET /builds/{id}    one recorded build with its rejected declarations
//
// The /builds routes are only mounted when build history is enabled.
//
// Start blocks until its context is cancelled or the listener fails, then
// shuts down gracefully within the configured timeout.
package server
