package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"p3a-hq/manifest/pkg/cli"
	"p3a-hq/manifest/pkg/history"
	"p3a-hq/manifest/pkg/processing"
	"p3a-hq/manifest/pkg/server"
	"p3a-hq/manifest/pkg/telemetry/health"
	"p3a-hq/manifest/pkg/watch"
)

var watchFlags struct {
	sourceFlags
	out string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the manifest whenever declarations change",
	Long: `Build the manifest, then rebuild it every time a declaration changes.

A failed rebuild is reported and leaves the last good manifest in place;
watching continues until interrupted. When the ops server is enabled it
serves health, readiness, metrics, the latest build status and the build
history.

Examples:
  # Watch the configured directory
  p3ac watch

  # Watch with a longer quiet period and no ops server
  P3AC_WATCH_DEBOUNCE=1s P3AC_SERVER_ENABLED=false p3ac watch`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	addSourceFlags(watchCmd, &watchFlags.sourceFlags)
	watchCmd.Flags().StringVarP(&watchFlags.out, "out", "o", "", "manifest output path")
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(watchFlags.format)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	if cmd.Flags().Changed("out") {
		a.cfg.Output.Path = watchFlags.out
	}
	if err := watchFlags.apply(cmd, a.cfg); err != nil {
		return err
	}
	if err := a.openHistory(); err != nil {
		return cli.NewCommandError("watch", err)
	}

	proc, err := a.processor()
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	w, err := watch.New(watch.Config{
		Dir:      a.cfg.Metrics.Dir,
		Debounce: a.cfg.Watch.Debounce,
		Match:    proc.Loader().Matches,
	}, a.logger.Slog())
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer w.Close()

	checker := health.New(0)
	checker.RegisterCheck("manifest", health.BuildCheck(func() health.BuildState {
		return buildState(proc.Last())
	}))
	if a.history != nil {
		checker.RegisterCheck("history", health.PingCheck(a.history))
	}

	rebuild := func(ctx context.Context, trigger string) {
		a.collector.RecordRebuild(trigger)
		report, buildErr := proc.Build(ctx, trigger)
		if err := finishReport(cmd, "watch", format, a.cfg, report, buildErr); err != nil && !cli.IsReported(err) {
			a.logger.ErrorContext(ctx, "rebuild failed", "trigger", trigger, "error", err)
		}
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	rebuild(ctx, processing.TriggerInitial)

	if a.cfg.Server.Enabled {
		srv := server.New(a.cfg.Server, server.Options{
			Collector:   a.collector,
			MetricsPath: a.cfg.Telemetry.Metrics.Path,
			Health:      checker,
			Status:      proc,
			History:     a.history,
			Version:     Version,
			Logger:      a.logger,
		})
		g.Go(func() error {
			return srv.Start(ctx)
		})
	}

	if a.history != nil && a.cfg.History.RetentionDays > 0 {
		pruner := history.NewPruner(a.history, a.cfg.History.RetentionDays, a.logger.Slog())
		scheduler := history.NewScheduler(pruner, a.cfg.History.PruneSchedule, a.collector.RecordPruned)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("watch", err)
		}
	}

	g.Go(func() error {
		return w.Watch(ctx, func(ctx context.Context, changed []string) error {
			a.logger.DebugContext(ctx, "rebuilding", "files", changed)
			rebuild(ctx, processing.TriggerChange)
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}

// buildState reduces a build report to what the readiness check needs.
func buildState(r *processing.Report) health.BuildState {
	if r == nil {
		return health.BuildState{}
	}
	return health.BuildState{Ran: true, OK: r.OK(), Err: r.Err}
}
