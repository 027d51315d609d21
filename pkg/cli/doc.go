/*
Package cli provides the output and error helpers shared by the p3ac
commands.

Build Reports:

WriteReport renders the outcome of a build or lint run. The text format
matches what metric authors already know from the manifest build:

	Validation errors in Brave.Core.Bogus.yaml:
	  - Invalid enum value. Expected 'typical' | 'express' | 'slow', received 'bogus' at cadence
	Build failed due to validation errors

and on success:

	Generated p3a_manifest.json with 42 metrics

The JSON format carries the same information, with locations, violation
kinds and suggestions, for CI annotations.

Errors:

ConfigError and CommandError give commands uniform messages. A
ReportedError marks a failure whose details were already written, so the
root command exits non-zero without printing it again.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
