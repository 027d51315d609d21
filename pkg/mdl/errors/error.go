package errors

import (
	"fmt"
	"strings"

	"p3a-hq/manifest/pkg/mdl/tree"
)

// ViolationType categorizes why a declaration was rejected.
type ViolationType string

const (
	ViolationSyntax     ViolationType = "syntax"     // Source could not be decoded
	ViolationStructural ViolationType = "structural" // Missing, unknown or mistyped field
	ViolationRefinement ViolationType = "refinement" // Cross-field rule failed
	ViolationDuplicate  ViolationType = "duplicate"  // Two entries share a metric name
)

// Violation is one way a declaration failed to match its schema.
type Violation struct {
	Type       ViolationType // Category of violation
	Message    string        // Human-readable message
	Path       Path          // Field path inside the declaration
	Location   tree.Location // Source location (file, line, column)
	Context    string        // Surrounding source lines
	Suggestion string        // Suggested fix (optional)
}

// Error implements the error interface.
func (v *Violation) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", v.Type, v.Message))
	if len(v.Path) > 0 {
		sb.WriteString(fmt.Sprintf(" at %s", v.Path))
	}
	sb.WriteString("\n")

	if v.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", v.Location.String()))
	}

	if v.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(v.Context)
		sb.WriteString("  |\n")
	}

	if v.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", v.Suggestion))
	}

	return sb.String()
}

// Line renders the violation on one line the way the build report does:
// "<message> at <path>", or just the message for the document root.
func (v *Violation) Line() string {
	if len(v.Path) == 0 {
		return v.Message
	}
	return fmt.Sprintf("%s at %s", v.Message, v.Path)
}

// ViolationList accumulates every violation found for one declaration.
type ViolationList struct {
	Violations []*Violation
}

// NewViolationList creates a new empty list.
func NewViolationList() *ViolationList {
	return &ViolationList{
		Violations: make([]*Violation, 0),
	}
}

// Add appends a violation to the list.
func (vl *ViolationList) Add(v *Violation) {
	vl.Violations = append(vl.Violations, v)
}

// AddViolation creates and adds a new violation.
func (vl *ViolationList) AddViolation(vt ViolationType, message string, path Path, location tree.Location) {
	vl.Add(&Violation{
		Type:     vt,
		Message:  message,
		Path:     path,
		Location: location,
	})
}

// AddViolationWithSuggestion creates and adds a new violation with a suggestion.
func (vl *ViolationList) AddViolationWithSuggestion(vt ViolationType, message string, path Path, location tree.Location, suggestion string) {
	vl.Add(&Violation{
		Type:       vt,
		Message:    message,
		Path:       path,
		Location:   location,
		Suggestion: suggestion,
	})
}

// Merge appends every violation of other.
func (vl *ViolationList) Merge(other *ViolationList) {
	if other == nil {
		return
	}
	vl.Violations = append(vl.Violations, other.Violations...)
}

// HasViolations returns true if the list is not empty.
func (vl *ViolationList) HasViolations() bool {
	return vl != nil && len(vl.Violations) > 0
}

// Count returns the number of violations in the list.
func (vl *ViolationList) Count() int {
	if vl == nil {
		return 0
	}
	return len(vl.Violations)
}

// Error implements the error interface.
func (vl *ViolationList) Error() string {
	if !vl.HasViolations() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violation(s):\n\n", vl.Count()))

	for i, v := range vl.Violations {
		sb.WriteString(fmt.Sprintf("Violation %d:\n", i+1))
		sb.WriteString(v.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil if the list is empty, otherwise the list itself.
func (vl *ViolationList) ToError() error {
	if !vl.HasViolations() {
		return nil
	}
	return vl
}

// ByType returns all violations of the given type.
func (vl *ViolationList) ByType(vt ViolationType) []*Violation {
	var result []*Violation
	for _, v := range vl.Violations {
		if v.Type == vt {
			result = append(result, v)
		}
	}
	return result
}

// HasType returns true if the list holds at least one violation of the given type.
func (vl *ViolationList) HasType(vt ViolationType) bool {
	for _, v := range vl.Violations {
		if v.Type == vt {
			return true
		}
	}
	return false
}

// AtPath returns the violations reported at exactly path.
func (vl *ViolationList) AtPath(path Path) []*Violation {
	var result []*Violation
	for _, v := range vl.Violations {
		if v.Path.Equal(path) {
			result = append(result, v)
		}
	}
	return result
}
