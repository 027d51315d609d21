// p3ac compiles per-metric P3A declaration files into the manifest
// consumed at runtime.
//
// It reads one YAML declaration per metric from a directory, validates
// every declaration against the metric schema and its definition grammar,
// and writes a single JSON manifest. A build either writes the whole
// manifest or reports every violation and writes nothing.
//
// Usage:
//
//	# Build dist/p3a_manifest.json from metrics/
//	p3ac build
//
//	# Validate without writing, for CI
//	p3ac lint --format json
//
//	# Show how one declaration is understood
//	p3ac inspect metrics/Brave.Core.UsageDaily.yaml
//
//	# Rebuild on every change and serve /metrics and /status
//	p3ac watch
//
//	# List recorded builds
//	p3ac history --limit 10
package main

func main() {
	Execute()
}
