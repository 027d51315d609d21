// Package schema validates whole metric declaration files: the top-level
// flags and attributes, the cadence, and the definition subtree checked by
// a grammar.
//
//	g, _ := grammar.New(grammar.GenerationCompositional)
//	s := schema.New(g)
//	decl, violations := s.Validate(value)
//
// A definition without a cadence is rejected at path "cadence".
package schema
