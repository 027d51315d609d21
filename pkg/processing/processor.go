package processing

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"p3a-hq/manifest/pkg/config"
	"p3a-hq/manifest/pkg/history"
	"p3a-hq/manifest/pkg/mdl"
	"p3a-hq/manifest/pkg/mdl/compiler"
	"p3a-hq/manifest/pkg/mdl/grammar"
	"p3a-hq/manifest/pkg/mdl/source"
	"p3a-hq/manifest/pkg/provenance"
	"p3a-hq/manifest/pkg/telemetry/logging"
	"p3a-hq/manifest/pkg/telemetry/metrics"
	"p3a-hq/manifest/pkg/telemetry/tracing"
)

// Options carries the services a Processor reports to. Every field is
// optional.
type Options struct {
	Logger    *logging.Logger
	Tracer    *tracing.Tracer
	Collector *metrics.Collector

	// History, when set, receives every build run through Build.
	History *history.Store
}

// Processor runs builds. It is safe for concurrent use, although the
// watch loop only ever runs one build at a time.
type Processor struct {
	cfg        *config.Config
	generation grammar.Generation
	compiler   *compiler.Compiler
	loader     *source.Loader
	logger     *logging.Logger
	tracer     *tracing.Tracer
	collector  *metrics.Collector
	history    *history.Store
	last       atomic.Pointer[Report]
}

// NewProcessor creates a processor for cfg.
func NewProcessor(cfg *config.Config, opts Options) (*Processor, error) {
	gen, err := grammar.ParseGeneration(cfg.Schema.Generation)
	if err != nil {
		return nil, err
	}

	p := &Processor{
		cfg:        cfg,
		generation: gen,
		loader:     source.NewLoader(cfg.Metrics.Extensions...),
		logger:     opts.Logger,
		tracer:     opts.Tracer,
		collector:  opts.Collector,
		history:    opts.History,
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	if p.tracer == nil {
		if p.tracer, err = tracing.New(config.TracingConfig{}, ""); err != nil {
			return nil, err
		}
	}
	if p.collector == nil {
		p.collector = metrics.NewCollector(config.MetricsConfig{}, nil)
	}

	p.compiler, err = mdl.NewCompiler(gen,
		compiler.WithWorkers(cfg.Compiler.Workers),
		compiler.WithContextLines(cfg.Compiler.ContextLines),
		compiler.WithLogger(p.logger.With("component", "compiler").Slog()),
		compiler.WithTracer(p.tracer.Tracer()),
		compiler.WithRecorder(p.collector),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create compiler: %w", err)
	}
	return p, nil
}

// Generation returns the grammar generation builds validate against.
func (p *Processor) Generation() grammar.Generation {
	return p.generation
}

// Loader returns the declaration loader, so that callers watching the
// metrics directory react to the same files a build reads.
func (p *Processor) Loader() *source.Loader {
	return p.loader
}

// Build compiles every declaration and, when all are accepted, writes the
// manifest to the configured output path. The returned report is never
// nil.
func (p *Processor) Build(ctx context.Context, trigger string) (*Report, error) {
	return p.run(ctx, trigger, true)
}

// Check compiles every declaration without writing the manifest or
// recording history.
func (p *Processor) Check(ctx context.Context) (*Report, error) {
	return p.run(ctx, TriggerManual, false)
}

// Last returns the report of the most recent build, or nil.
func (p *Processor) Last() *Report {
	return p.last.Load()
}

func (p *Processor) run(ctx context.Context, trigger string, write bool) (*Report, error) {
	report := &Report{
		BuildID:    history.NewBuildID(),
		Trigger:    trigger,
		StartedAt:  time.Now(),
		Generation: p.generation,
	}

	ctx = logging.WithBuildID(ctx, report.BuildID)
	ctx = logging.WithGeneration(ctx, p.generation.String())
	ctx, span := p.tracer.Start(ctx, "p3ac.build")
	defer span.End()
	if traceID := tracing.TraceID(ctx); traceID != "" {
		ctx = logging.WithTraceID(ctx, traceID)
	}

	entries, err := p.loader.LoadDir(p.cfg.Metrics.Dir)
	if err != nil {
		return p.finish(ctx, span, report, write, err)
	}
	tracing.SetBuildAttributes(span, report.BuildID, p.generation.String(), len(entries))

	if p.cfg.Provenance.Enabled {
		report.Provenance = p.lookupProvenance(ctx)
		if report.Provenance != nil {
			span.SetAttributes(attribute.String(tracing.AttrCommit, report.Provenance.Commit))
		}
	}

	m, result, err := mdl.Build(ctx, p.compiler, entries)
	report.Result = result
	if err != nil {
		return p.finish(ctx, span, report, write, err)
	}
	report.Manifest = m

	if write {
		if err := p.writeManifest(report); err != nil {
			return p.finish(ctx, span, report, write, err)
		}
		tracing.SetManifestAttributes(span, report.OutputPath, report.Digest, report.Size)
		p.collector.RecordManifest(m.Len(), report.Size)
	}

	return p.finish(ctx, span, report, write, nil)
}

func (p *Processor) writeManifest(report *Report) error {
	m := report.Manifest
	data, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	digest, err := m.Digest()
	if err != nil {
		return fmt.Errorf("failed to digest manifest: %w", err)
	}

	path := p.cfg.Output.Path
	if err := m.WriteFile(path); err != nil {
		return err
	}

	report.OutputPath = path
	report.Digest = digest
	report.Size = len(data)
	return nil
}

func (p *Processor) lookupProvenance(ctx context.Context) *provenance.Info {
	info, err := provenance.Lookup(p.cfg.Metrics.Dir)
	switch {
	case errors.Is(err, provenance.ErrNoRepository):
		p.logger.DebugContext(ctx, "metrics directory is not in a git repository", "dir", p.cfg.Metrics.Dir)
		return nil
	case err != nil:
		p.logger.WarnContext(ctx, "failed to look up commit", "dir", p.cfg.Metrics.Dir, "error", err)
		return nil
	}
	return info
}

// finish stamps the report, closes out the span and records the build.
func (p *Processor) finish(ctx context.Context, span trace.Span, report *Report, write bool, err error) (*Report, error) {
	report.Duration = time.Since(report.StartedAt)
	report.Err = err

	tracing.SetError(span, err)
	tracing.SetStatus(span, err)

	if err != nil {
		var buildErr *compiler.BuildError
		if errors.As(err, &buildErr) {
			p.logger.WarnContext(ctx, "build rejected",
				"failed", buildErr.Failed,
				"total", buildErr.Total,
				"duration", report.Duration,
			)
		} else {
			p.logger.ErrorContext(ctx, "build failed", "error", err)
		}
	} else if write {
		args := []any{
			"path", report.OutputPath,
			"metrics", report.Metrics(),
			"bytes", report.Size,
			"digest", report.Digest,
			"duration", report.Duration,
		}
		if report.Provenance != nil {
			args = append(args, "commit", report.Provenance.String())
		}
		p.logger.InfoContext(ctx, "manifest written", args...)
	}

	if write && p.history != nil {
		if herr := p.history.Record(ctx, report.historyBuild()); herr != nil {
			p.logger.WarnContext(ctx, "failed to record build history", "error", herr)
		}
	}

	if write {
		p.last.Store(report)
	}
	return report, err
}
