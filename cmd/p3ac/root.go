package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"p3a-hq/manifest/pkg/cli"
	"p3a-hq/manifest/pkg/config"
	"p3a-hq/manifest/pkg/history"
	"p3a-hq/manifest/pkg/processing"
	"p3a-hq/manifest/pkg/telemetry/logging"
	"p3a-hq/manifest/pkg/telemetry/metrics"
	"p3a-hq/manifest/pkg/telemetry/tracing"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "p3ac",
	Short: "p3ac - P3A metric manifest compiler",
	Long: `p3ac compiles a directory of per-metric declaration files into one
JSON manifest.

Every declaration is validated against the metric schema, including its
recursive definition tree. The manifest is only written when every
declaration is valid; otherwise each violation is reported with the file
and field it occurs at.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := cli.SetupSignalHandler(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default "+config.DefaultConfigFile+" when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// app holds the services a command runs with.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	tracer    *tracing.Tracer
	collector *metrics.Collector
	history   *history.Store
}

// newApp loads the configuration and sets up logging, tracing and
// metrics. One-shot commands log warnings and errors only, unless
// --verbose is given.
func newApp(cmd *cobra.Command, oneShot bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Writer:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	switch {
	case verbose:
		logger.SetLevel(slog.LevelDebug)
	case oneShot && logger.Level() < slog.LevelWarn:
		logger.SetLevel(slog.LevelWarn)
	}

	tracer, err := tracing.New(cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, cli.NewCommandError(cmd.Name(), err)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		tracer:    tracer,
		collector: metrics.NewCollector(cfg.Telemetry.Metrics, nil),
	}, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, configError(err)
	}
	return cfg, nil
}

// configError reports each invalid field on its own line.
func configError(err error) error {
	cerrs := cli.ConfigErrors(err)
	joined := make([]error, len(cerrs))
	for i, ce := range cerrs {
		joined[i] = ce
	}
	return errors.Join(joined...)
}

// openHistory opens the build history store when it is enabled.
func (a *app) openHistory() error {
	if !a.cfg.History.Enabled || a.history != nil {
		return nil
	}
	store, err := history.Open(history.Config{
		Path:   a.cfg.History.Path,
		Logger: a.logger.Slog(),
	})
	if err != nil {
		return err
	}
	a.history = store
	return nil
}

func (a *app) processor() (*processing.Processor, error) {
	return processing.NewProcessor(a.cfg, processing.Options{
		Logger:    a.logger,
		Tracer:    a.tracer,
		Collector: a.collector,
		History:   a.history,
	})
}

// close flushes spans and closes the history store.
func (a *app) close() {
	if err := a.tracer.Shutdown(context.Background()); err != nil {
		a.logger.Warn("failed to flush traces", "error", err)
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("failed to close history store", "error", err)
		}
	}
}

// writeTextfile exports the build metrics for a node exporter textfile
// collector, when configured.
func (a *app) writeTextfile() {
	path := a.cfg.Telemetry.Metrics.TextfilePath
	if path == "" || !a.collector.Enabled() {
		return
	}
	if err := a.collector.WriteTextfile(path); err != nil {
		a.logger.Warn("failed to write metrics textfile", "path", path, "error", err)
	}
}
