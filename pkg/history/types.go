package history

import (
	"time"

	"github.com/google/uuid"
)

// Build outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Build is one recorded compile run.
type Build struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	Generation string
	Outcome    string

	// Total is the number of declarations seen, Failed the number rejected.
	Total      int
	Failed     int
	Violations int

	// Digest is the SHA-256 of the written manifest. Empty for failures.
	Digest     string
	OutputPath string

	// Commit is the HEAD commit of the repository holding the
	// declarations, and Dirty whether its worktree had changes.
	Commit string
	Dirty  bool

	// Failures lists the rejected declarations.
	Failures []Failure
}

// Failure is a rejected declaration of a failed build.
type Failure struct {
	Metric     string
	Path       string
	Violations int
}

// OK reports whether the build succeeded.
func (b *Build) OK() bool {
	return b.Outcome == OutcomeSuccess
}

// NewBuildID returns a fresh random build identifier.
func NewBuildID() string {
	return uuid.NewString()
}
