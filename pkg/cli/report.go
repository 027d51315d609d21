package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	mdlErrors "p3a-hq/manifest/pkg/mdl/errors"
	"p3a-hq/manifest/pkg/processing"
)

// ReportOptions controls the text rendering of diagnostics.
type ReportOptions struct {
	// Context prints the source lines around each violation, when the
	// compiler captured them.
	Context bool

	// Suggestions prints "did you mean" hints.
	Suggestions bool
}

// Report is the JSON form of a build or lint run.
type Report struct {
	OK           bool         `json:"ok"`
	BuildID      string       `json:"build_id,omitempty"`
	Generation   string       `json:"generation"`
	Declarations int          `json:"declarations"`
	Failed       int          `json:"failed"`
	Violations   int          `json:"violations"`
	Metrics      int          `json:"metrics"`
	Output       string       `json:"output,omitempty"`
	Digest       string       `json:"digest,omitempty"`
	Files        []FileReport `json:"files,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// FileReport lists the violations of one rejected declaration.
type FileReport struct {
	Metric     string            `json:"metric"`
	File       string            `json:"file,omitempty"`
	Violations []ViolationReport `json:"violations"`
}

// ViolationReport is one violation with its location.
type ViolationReport struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Path       string `json:"path"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// NewReport converts a processing report into its JSON form.
func NewReport(r *processing.Report) Report {
	out := Report{
		OK:         r.OK(),
		BuildID:    r.BuildID,
		Generation: r.Generation.String(),
		Metrics:    r.Metrics(),
		Output:     r.OutputPath,
		Digest:     r.Digest,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	if r.Result == nil {
		return out
	}

	out.Declarations = r.Result.Total
	out.Failed = r.Result.Failed
	out.Violations = r.Result.ViolationCount()
	for _, d := range r.Result.Diagnostics {
		fr := FileReport{Metric: d.Name, File: d.Path}
		for _, v := range d.Violations.Violations {
			fr.Violations = append(fr.Violations, newViolationReport(v))
		}
		out.Files = append(out.Files, fr)
	}
	return out
}

func newViolationReport(v *mdlErrors.Violation) ViolationReport {
	return ViolationReport{
		Type:       string(v.Type),
		Message:    v.Message,
		Path:       v.Path.String(),
		Line:       v.Location.Line,
		Column:     v.Location.Column,
		Suggestion: v.Suggestion,
	}
}

// WriteReport renders r. In text mode diagnostics go to errOut and the
// success line to out; in JSON mode the whole report goes to out.
func WriteReport(out, errOut io.Writer, format OutputFormat, r *processing.Report, opts ReportOptions) error {
	if format == FormatJSON {
		return NewFormatter(FormatJSON).FormatTo(out, NewReport(r))
	}

	if r.Result != nil && !r.Result.OK() {
		return writeDiagnostics(errOut, r, opts)
	}
	if !r.OK() {
		// Not a validation failure; the caller reports the error itself.
		return nil
	}

	if r.OutputPath != "" {
		_, err := fmt.Fprintf(out, "Generated %s with %d metrics\n", filepath.Base(r.OutputPath), r.Metrics())
		return err
	}
	_, err := fmt.Fprintf(out, "Validated %d declarations\n", r.Metrics())
	return err
}

func writeDiagnostics(w io.Writer, r *processing.Report, opts ReportOptions) error {
	var sb strings.Builder
	for _, d := range r.Result.Diagnostics {
		file := d.Name
		if d.Path != "" {
			file = filepath.Base(d.Path)
		}
		fmt.Fprintf(&sb, "Validation errors in %s:\n", file)

		for _, v := range d.Violations.Violations {
			fmt.Fprintf(&sb, "  - %s\n", v.Line())
			if opts.Suggestions && v.Suggestion != "" {
				fmt.Fprintf(&sb, "    %s\n", v.Suggestion)
			}
			if opts.Context && v.Context != "" {
				for _, line := range strings.Split(strings.TrimRight(v.Context, "\n"), "\n") {
					fmt.Fprintf(&sb, "    %s\n", line)
				}
			}
		}
	}
	sb.WriteString("Build failed due to validation errors\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
