package processing

import (
	"time"

	"p3a-hq/manifest/pkg/history"
	"p3a-hq/manifest/pkg/mdl/compiler"
	"p3a-hq/manifest/pkg/mdl/grammar"
	"p3a-hq/manifest/pkg/mdl/manifest"
	"p3a-hq/manifest/pkg/provenance"
)

// Triggers describe why a build ran.
const (
	TriggerManual  = "manual"
	TriggerInitial = "initial"
	TriggerChange  = "change"
)

// Report describes one build.
type Report struct {
	// BuildID uniquely identifies the build in logs, spans and history.
	BuildID string

	// Trigger is why the build ran.
	Trigger string

	StartedAt  time.Time
	Duration   time.Duration
	Generation grammar.Generation

	// Result is the compiler outcome. Nil when declarations could not be
	// listed.
	Result *compiler.Result

	// Manifest is set when every declaration was accepted.
	Manifest *manifest.Manifest

	// OutputPath, Digest and Size describe the written manifest. They are
	// empty for checks and failed builds.
	OutputPath string
	Digest     string
	Size       int

	// Provenance is the commit the declarations were read from, when known.
	Provenance *provenance.Info

	// Err is the reason the build failed, nil on success.
	Err error
}

// OK reports whether the build succeeded.
func (r *Report) OK() bool {
	return r.Err == nil
}

// Metrics returns the number of metrics in the manifest.
func (r *Report) Metrics() int {
	if r.Manifest == nil {
		return 0
	}
	return r.Manifest.Len()
}

// Summary is the JSON view of a Report.
type Summary struct {
	BuildID      string    `json:"build_id"`
	Trigger      string    `json:"trigger,omitempty"`
	Outcome      string    `json:"outcome"`
	StartedAt    time.Time `json:"started_at"`
	DurationMS   float64   `json:"duration_ms"`
	Generation   string    `json:"generation"`
	Declarations int       `json:"declarations"`
	Failed       int       `json:"failed"`
	Violations   int       `json:"violations"`
	Metrics      int       `json:"metrics"`
	OutputPath   string    `json:"output_path,omitempty"`
	Digest       string    `json:"digest,omitempty"`
	Commit       string    `json:"commit,omitempty"`
	Branch       string    `json:"branch,omitempty"`
	Dirty        bool      `json:"dirty,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Summary returns the JSON view of r.
func (r *Report) Summary() Summary {
	s := Summary{
		BuildID:    r.BuildID,
		Trigger:    r.Trigger,
		Outcome:    r.outcome(),
		StartedAt:  r.StartedAt.UTC(),
		DurationMS: float64(r.Duration.Microseconds()) / 1000,
		Generation: r.Generation.String(),
		Metrics:    r.Metrics(),
		OutputPath: r.OutputPath,
		Digest:     r.Digest,
	}
	if r.Result != nil {
		s.Declarations = r.Result.Total
		s.Failed = r.Result.Failed
		s.Violations = r.Result.ViolationCount()
	}
	if r.Provenance != nil {
		s.Commit = r.Provenance.Commit
		s.Branch = r.Provenance.Branch
		s.Dirty = r.Provenance.Dirty
	}
	if r.Err != nil {
		s.Error = r.Err.Error()
	}
	return s
}

func (r *Report) outcome() string {
	if r.OK() {
		return history.OutcomeSuccess
	}
	return history.OutcomeFailure
}

// historyBuild converts r into the record kept by the history store.
func (r *Report) historyBuild() *history.Build {
	b := &history.Build{
		ID:         r.BuildID,
		StartedAt:  r.StartedAt,
		Duration:   r.Duration,
		Generation: r.Generation.String(),
		Outcome:    r.outcome(),
		Digest:     r.Digest,
		OutputPath: r.OutputPath,
	}
	if r.Result != nil {
		b.Total = r.Result.Total
		b.Failed = r.Result.Failed
		b.Violations = r.Result.ViolationCount()
		for _, d := range r.Result.Diagnostics {
			b.Failures = append(b.Failures, history.Failure{
				Metric:     d.Name,
				Path:       d.Path,
				Violations: d.Count(),
			})
		}
	}
	if r.Provenance != nil {
		b.Commit = r.Provenance.Commit
		b.Dirty = r.Provenance.Dirty
	}
	return b
}
