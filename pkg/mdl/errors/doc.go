// Package errors provides the violation types reported while validating
// metric declarations.
//
// A Violation carries a field path inside the declaration, the source
// location it came from, and optionally surrounding context and a
// suggestion. A ViolationList accumulates every violation of one
// declaration; validation never stops at the first one.
//
// # Violation Types
//
// ViolationSyntax: the file could not be decoded into a tree
//
// ViolationStructural: missing, unknown or mistyped fields, values outside
// an enumeration, sequences or mappings below their minimum size
//
// ViolationRefinement: a cross-field rule failed, e.g. a definition without
// a cadence
//
// ViolationDuplicate: two files map to the same metric name
//
// # Paths
//
// Paths are rendered joined with dots, indices in decimal:
//
//	definition.sources.0.storage_key
//
// # Suggestions
//
// Unknown keys and unknown enumeration values get a Levenshtein-based
// suggestion:
//
//	errors.SuggestFieldName("cadance", []string{"cadence", "definition"})
//	// Returns: "Did you mean 'cadence'?"
package errors
