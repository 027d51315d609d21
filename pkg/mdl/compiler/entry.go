package compiler

import (
	"fmt"
	"sort"
	"strings"

	mdlErrors "p3a-hq/manifest/pkg/mdl/errors"
	"p3a-hq/manifest/pkg/mdl/tree"
)

// Entry is one declaration handed to the compiler.
type Entry struct {
	// Name is the metric name, unique within a run.
	Name string

	// Path is where the declaration was read from, for reporting.
	Path string

	// Source holds the raw file contents, used to render context lines.
	// Optional.
	Source []byte

	// Tree is the decoded declaration. Nil when Err is set.
	Tree tree.Value

	// Err is set when the source could not be decoded.
	Err error
}

// label returns the identifier used in reports.
func (e Entry) label() string {
	if e.Path != "" {
		return e.Path
	}
	return e.Name
}

// EntryDiagnostics groups the violations of one rejected entry.
type EntryDiagnostics struct {
	Name       string                   `json:"name"`
	Path       string                   `json:"path,omitempty"`
	Violations *mdlErrors.ViolationList `json:"-"`
}

// Count returns the number of violations.
func (d EntryDiagnostics) Count() int {
	return d.Violations.Count()
}

// sortDiagnostics orders groups by entry name, then by path.
func sortDiagnostics(groups []EntryDiagnostics) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Name != groups[j].Name {
			return groups[i].Name < groups[j].Name
		}
		return groups[i].Path < groups[j].Path
	})
}

// BuildError is returned by Compile when at least one entry was rejected.
type BuildError struct {
	Total       int
	Failed      int
	Diagnostics []EntryDiagnostics
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	names := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		names = append(names, d.Name)
	}
	return fmt.Sprintf("validation failed for %d of %d declarations: %s", e.Failed, e.Total, strings.Join(names, ", "))
}
