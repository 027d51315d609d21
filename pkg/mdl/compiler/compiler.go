package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	mdlErrors "p3a-hq/manifest/pkg/mdl/errors"
	"p3a-hq/manifest/pkg/mdl/grammar"
	"p3a-hq/manifest/pkg/mdl/schema"
	"p3a-hq/manifest/pkg/mdl/tree"
	"p3a-hq/manifest/pkg/telemetry/tracing"
)

// Compiler validates a set of declaration entries as one run. A run either
// accepts every entry or reports every violation of every rejected entry.
type Compiler struct {
	schema       *schema.Schema
	workers      int
	logger       *slog.Logger
	tracer       trace.Tracer
	recorder     Recorder
	contextLines int
}

// New creates a compiler that validates entries against s.
func New(s *schema.Schema, opts ...Option) *Compiler {
	c := &Compiler{
		schema:       s,
		workers:      1,
		logger:       defaultLogger(),
		tracer:       defaultTracer(),
		contextLines: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generation returns the grammar generation entries are validated against.
func (c *Compiler) Generation() grammar.Generation {
	return c.schema.Grammar().Generation()
}

// Result is the outcome of one run.
type Result struct {
	// Declarations maps metric names to validated declarations. It is nil
	// unless every entry was accepted.
	Declarations map[string]*schema.Declaration

	// Diagnostics holds one group per rejected entry, sorted by name.
	Diagnostics []EntryDiagnostics

	Total      int
	Failed     int
	Generation grammar.Generation
	Duration   time.Duration
}

// OK reports whether every entry was accepted.
func (r *Result) OK() bool {
	return r.Failed == 0
}

// Names returns the accepted metric names in ascending order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Declarations))
	for name := range r.Declarations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ViolationCount returns the total number of violations across entries.
func (r *Result) ViolationCount() int {
	n := 0
	for _, d := range r.Diagnostics {
		n += d.Count()
	}
	return n
}

// outcome is the per-entry result slot. Workers only write their own slot.
type outcome struct {
	decl       *schema.Declaration
	violations *mdlErrors.ViolationList
}

// Compile validates every entry. It returns the result and, when any entry
// was rejected, a *BuildError describing the failure. The error is a
// context error only when ctx was cancelled before all entries ran.
func (c *Compiler) Compile(ctx context.Context, entries []Entry) (*Result, error) {
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "p3ac.compile", trace.WithAttributes(
		attribute.Int(tracing.AttrEntries, len(entries)),
		attribute.String(tracing.AttrGeneration, c.Generation().String()),
		attribute.Int(tracing.AttrWorkers, c.workers),
	))
	defer span.End()

	slots := make([]outcome, len(entries))
	if err := c.run(ctx, entries, slots); err != nil {
		tracing.SetError(span, err)
		tracing.SetStatus(span, err)
		return nil, err
	}

	markDuplicates(entries, slots)

	result := &Result{
		Total:      len(entries),
		Generation: c.Generation(),
	}
	decls := make(map[string]*schema.Declaration, len(entries))
	for i, e := range entries {
		if slots[i].violations.HasViolations() {
			result.Diagnostics = append(result.Diagnostics, EntryDiagnostics{
				Name:       e.Name,
				Path:       e.Path,
				Violations: slots[i].violations,
			})
			continue
		}
		decls[e.Name] = slots[i].decl
	}
	sortDiagnostics(result.Diagnostics)
	result.Failed = len(result.Diagnostics)
	result.Duration = time.Since(start)

	status := OutcomeSuccess
	if result.OK() {
		result.Declarations = decls
	} else {
		status = OutcomeFailure
	}

	if c.recorder != nil {
		c.recorder.RecordCompile(status, result.Total, result.Duration)
	}

	span.SetAttributes(
		attribute.Int(tracing.AttrFailed, result.Failed),
		attribute.Int(tracing.AttrViolations, result.ViolationCount()),
	)

	c.logger.InfoContext(ctx, "compiled declarations",
		"generation", result.Generation.String(),
		"total", result.Total,
		"failed", result.Failed,
		"violations", result.ViolationCount(),
		"duration", result.Duration,
	)

	if !result.OK() {
		err := &BuildError{Total: result.Total, Failed: result.Failed, Diagnostics: result.Diagnostics}
		tracing.SetStatus(span, err)
		return result, err
	}
	tracing.SetStatus(span, nil)
	return result, nil
}

// run fills one slot per entry, sequentially or with a bounded pool.
func (c *Compiler) run(ctx context.Context, entries []Entry, slots []outcome) error {
	if c.workers <= 1 || len(entries) < 2 {
		for i := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			slots[i] = c.compileEntry(ctx, entries[i])
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = c.compileEntry(gctx, entries[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (c *Compiler) compileEntry(ctx context.Context, e Entry) outcome {
	start := time.Now()
	_, span := c.tracer.Start(ctx, "p3ac.compile_entry", tracing.EntryAttributes(e.Name, e.Path))
	defer span.End()

	var out outcome
	if e.Err != nil {
		out.violations = syntaxViolation(e)
	} else {
		out.decl, out.violations = c.schema.Validate(e.Tree)
	}

	if out.violations.HasViolations() && c.contextLines > 0 && len(e.Source) > 0 {
		out.violations.WithContext(e.Source, c.contextLines)
	}

	count := out.violations.Count()
	span.SetAttributes(attribute.Int(tracing.AttrViolations, count))

	status := OutcomeSuccess
	if count > 0 {
		status = OutcomeFailure
		span.SetStatus(codes.Error, "declaration rejected")
		c.logger.DebugContext(ctx, "declaration rejected",
			"metric", e.Name,
			"path", e.label(),
			"violations", count,
		)
	}

	if c.recorder != nil {
		c.recorder.RecordDeclaration(status, count, time.Since(start))
	}
	return out
}

func syntaxViolation(e Entry) *mdlErrors.ViolationList {
	vl := mdlErrors.NewViolationList()

	var syntaxErr *tree.SyntaxError
	if errors.As(e.Err, &syntaxErr) {
		vl.AddViolation(mdlErrors.ViolationSyntax, syntaxErr.Message, nil, syntaxErr.Loc)
		return vl
	}
	vl.AddViolation(mdlErrors.ViolationSyntax, e.Err.Error(), nil, tree.Location{File: e.Path})
	return vl
}

// markDuplicates rejects every entry whose name is shared with another.
func markDuplicates(entries []Entry, slots []outcome) {
	byName := make(map[string][]int, len(entries))
	for i, e := range entries {
		byName[e.Name] = append(byName[e.Name], i)
	}

	for name, idxs := range byName {
		if len(idxs) < 2 {
			continue
		}
		labels := make([]string, len(idxs))
		for j, i := range idxs {
			labels[j] = entries[i].label()
		}
		msg := fmt.Sprintf("metric name %q is declared more than once: %s", name, strings.Join(labels, ", "))

		for _, i := range idxs {
			if slots[i].violations == nil {
				slots[i].violations = mdlErrors.NewViolationList()
			}
			slots[i].violations.AddViolation(mdlErrors.ViolationDuplicate, msg, nil, tree.Location{File: entries[i].Path})
			slots[i].decl = nil
		}
	}
}
