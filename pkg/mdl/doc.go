// Package mdl compiles metric declaration files into the P3A manifest.
//
// The work is split across subpackages, leaf first:
//
//   - tree: the untyped document model and YAML decoding
//   - errors: violations, paths and suggestions
//   - shape: the schema combinators
//   - grammar: the definition language, in two generations
//   - schema: whole declaration files
//   - compiler: run-wide validation and aggregation
//   - manifest: the output document
//   - source: reading a directory of declaration files
//
// This package ties them together:
//
//	c, err := mdl.NewCompiler(grammar.GenerationCompositional)
//	if err != nil {
//	    return err
//	}
//	m, result, err := mdl.BuildDir(ctx, c, "metrics")
//	if err != nil {
//	    // result.Diagnostics lists every violation, per file
//	}
//	err = m.WriteFile("dist/p3a_manifest.json")
package mdl
