// Package tree holds the untyped document model that declaration files are
// decoded into before validation.
//
// A Value is one of Null, Bool, Number, String, Sequence or Mapping. Numbers
// are exact decimals, mappings remember key order, and every node carries
// the Location it was read from so that diagnostics can point at the
// offending line.
//
// Parse turns YAML into a Value:
//
//	v, err := tree.Parse(data, "metrics/foo.yaml")
//	if err != nil {
//	    var syntaxErr *tree.SyntaxError
//	    errors.As(err, &syntaxErr)
//	}
//
// AppendJSON writes a Value back out with key order preserved, which is how
// declarations end up in the manifest unmodified.
package tree
