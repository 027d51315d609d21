package mdl

import (
	"context"

	"p3a-hq/manifest/pkg/mdl/compiler"
	"p3a-hq/manifest/pkg/mdl/grammar"
	"p3a-hq/manifest/pkg/mdl/manifest"
	"p3a-hq/manifest/pkg/mdl/schema"
	"p3a-hq/manifest/pkg/mdl/source"
)

// NewCompiler builds the grammar and schema of a generation and returns a
// compiler for them.
func NewCompiler(gen grammar.Generation, opts ...compiler.Option) (*compiler.Compiler, error) {
	g, err := grammar.New(gen)
	if err != nil {
		return nil, err
	}
	return compiler.New(schema.New(g), opts...), nil
}

// Build compiles entries and assembles the manifest. The manifest is nil
// whenever the result reports a failure.
func Build(ctx context.Context, c *compiler.Compiler, entries []compiler.Entry) (*manifest.Manifest, *compiler.Result, error) {
	result, err := c.Compile(ctx, entries)
	if err != nil {
		return nil, result, err
	}
	return manifest.Assemble(result.Declarations), result, nil
}

// BuildDir loads every declaration in dir and builds the manifest from
// them.
func BuildDir(ctx context.Context, c *compiler.Compiler, dir string, extensions ...string) (*manifest.Manifest, *compiler.Result, error) {
	entries, err := source.NewLoader(extensions...).LoadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	return Build(ctx, c, entries)
}
