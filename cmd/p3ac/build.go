package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"p3a-hq/manifest/pkg/cli"
	"p3a-hq/manifest/pkg/config"
	"p3a-hq/manifest/pkg/mdl/compiler"
	"p3a-hq/manifest/pkg/processing"
)

// sourceFlags are the flags shared by build and lint. They override the
// configuration file only when given.
type sourceFlags struct {
	dir        string
	generation string
	workers    int
	format     string
}

var buildFlags struct {
	sourceFlags
	out string
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile declarations into the manifest",
	Long: `Compile every declaration in the metrics directory into one JSON manifest.

Each declaration is parsed and validated against the metric schema. When
every declaration is valid the manifest is written; otherwise each
violation is reported and nothing is written.

Examples:
  # Build with defaults (metrics/ -> dist/p3a_manifest.json)
  p3ac build

  # Build another directory
  p3ac build --dir brave/metrics --out out/p3a_manifest.json

  # Use the flat definition grammar
  p3ac build --generation v1

  # JSON report for CI/CD
  p3ac build --format json`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	addSourceFlags(buildCmd, &buildFlags.sourceFlags)
	buildCmd.Flags().StringVarP(&buildFlags.out, "out", "o", "", "manifest output path")
}

func addSourceFlags(cmd *cobra.Command, f *sourceFlags) {
	cmd.Flags().StringVarP(&f.dir, "dir", "d", "", "directory of declaration files")
	cmd.Flags().StringVarP(&f.generation, "generation", "g", "", "definition grammar: v1 (flat), v2 (compositional)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "declarations validated concurrently")
	cmd.Flags().StringVar(&f.format, "format", "text", "output format: text, json")
}

// apply copies the flags that were given into cfg and revalidates it.
func (f *sourceFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("dir") {
		cfg.Metrics.Dir = f.dir
	}
	if cmd.Flags().Changed("generation") {
		cfg.Schema.Generation = f.generation
	}
	if cmd.Flags().Changed("workers") {
		cfg.Compiler.Workers = f.workers
	}
	return validateConfig(cfg)
}

func validateConfig(cfg *config.Config) error {
	if err := config.Validate(cfg); err != nil {
		return configError(err)
	}
	return nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(buildFlags.format)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	if cmd.Flags().Changed("out") {
		a.cfg.Output.Path = buildFlags.out
	}
	if err := buildFlags.apply(cmd, a.cfg); err != nil {
		return err
	}
	if err := a.openHistory(); err != nil {
		return cli.NewCommandError("build", err)
	}

	proc, err := a.processor()
	if err != nil {
		return cli.NewCommandError("build", err)
	}

	report, buildErr := proc.Build(cmd.Context(), processing.TriggerManual)
	a.writeTextfile()
	return finishReport(cmd, "build", format, a.cfg, report, buildErr)
}

// finishReport writes the report and turns the build error into the
// command error. Errors already shown in the report are not printed again.
func finishReport(cmd *cobra.Command, name string, format cli.OutputFormat, cfg *config.Config, report *processing.Report, buildErr error) error {
	if report != nil {
		opts := cli.ReportOptions{
			Context:     cfg.Compiler.ContextLines > 0,
			Suggestions: true,
		}
		if err := cli.WriteReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), format, report, opts); err != nil {
			return cli.NewCommandError(name, fmt.Errorf("failed to write report: %w", err))
		}
	}

	if buildErr == nil {
		return nil
	}
	var be *compiler.BuildError
	if report != nil && (errors.As(buildErr, &be) || format == cli.FormatJSON) {
		return cli.Reported(buildErr)
	}
	return cli.NewCommandError(name, buildErr)
}
