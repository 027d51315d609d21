// Package manifest assembles validated declarations into the single JSON
// document the runtime consumes:
//
//	{"metrics":{"<name>":{...declaration as written...}}}
//
// Names come from the declaration file names and are emitted sorted.
// Nothing is added, removed or reformatted inside a declaration.
package manifest
