package main

import (
	"github.com/spf13/cobra"

	"p3a-hq/manifest/pkg/cli"
)

var lintFlags sourceFlags

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate declarations without writing the manifest",
	Long: `Validate every declaration in the metrics directory.

Lint runs the same validation as build and reports the same violations,
but never writes the manifest and never records history. It exits with a
non-zero status when any declaration is invalid.

Examples:
  # Lint the configured directory
  p3ac lint

  # Lint another directory against the flat grammar
  p3ac lint --dir metrics/ --generation v1

  # JSON output for CI/CD
  p3ac lint --format json`,
	Args: cobra.NoArgs,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	addSourceFlags(lintCmd, &lintFlags)
}

func runLint(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	if err := lintFlags.apply(cmd, a.cfg); err != nil {
		return err
	}

	proc, err := a.processor()
	if err != nil {
		return cli.NewCommandError("lint", err)
	}

	report, checkErr := proc.Check(cmd.Context())
	return finishReport(cmd, "lint", format, a.cfg, report, checkErr)
}
