package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"p3a-hq/manifest/pkg/cli"
	"p3a-hq/manifest/pkg/history"
	"p3a-hq/manifest/pkg/server"
)

var historyFlags struct {
	limit  int
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded builds",
	Long: `List builds recorded in the history store, newest first.

History is only recorded when history.enabled is set in the configuration.

Examples:
  # Last 20 builds
  p3ac history

  # Last 5 builds as JSON
  p3ac history --limit 5 --format json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "maximum number of builds listed")
	historyCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json")
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return err
	}
	if historyFlags.limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", historyFlags.limit)
	}

	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	if !a.cfg.History.Enabled {
		return cli.NewConfigError("history.enabled", "build history is disabled")
	}
	if err := a.openHistory(); err != nil {
		return cli.NewCommandError("history", err)
	}

	builds, err := a.history.List(cmd.Context(), historyFlags.limit)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	if format == cli.FormatJSON {
		views := make([]server.BuildView, 0, len(builds))
		for _, b := range builds {
			views = append(views, server.NewBuildView(b))
		}
		return cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), views)
	}
	return writeBuilds(cmd.OutOrStdout(), builds)
}

func writeBuilds(w io.Writer, builds []*history.Build) error {
	if len(builds) == 0 {
		_, err := fmt.Fprintln(w, "No builds recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tBUILD\tGENERATION\tOUTCOME\tDECLARATIONS\tFAILED\tCOMMIT")
	for _, b := range builds {
		commit := b.Commit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		if commit == "" {
			commit = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			b.StartedAt.Local().Format(time.DateTime),
			b.ID,
			b.Generation,
			b.Outcome,
			b.Total,
			b.Failed,
			commit,
		)
	}
	return tw.Flush()
}
