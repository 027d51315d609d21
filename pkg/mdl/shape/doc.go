// Package shape is a small combinator library for validating tree values
// against declarative schemas.
//
// Schemas are built once and reused:
//
//	point := shape.Object(
//	    shape.Field("x", shape.Number()),
//	    shape.Optional("label", shape.String().Min(1)),
//	)
//
//	out, violations := shape.Validate(point, value)
//
// Objects are always strict: every key that is not declared is reported
// as its own violation at the key's path. Validation never stops at the
// first violation, so one call reports everything wrong with a value.
//
// Discriminated unions dispatch on a literal tag field, and Lazy lets a
// union refer to itself for recursive grammars:
//
//	var node *shape.UnionSchema
//	ref := shape.Lazy(func() shape.Schema { return node })
//	node = shape.Union("type",
//	    shape.Case("leaf", shape.Object(shape.Field("name", shape.String()))),
//	    shape.Case("wrap", shape.Object(shape.Field("inner", ref))),
//	)
//
// Cross-field rules are attached with Refine and typed results are
// produced with Bind.
package shape
