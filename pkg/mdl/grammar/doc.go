// Package grammar declares the definition language used in a metric's
// "definition" field.
//
// Two generations exist. The flat generation (v1) has two self-contained
// node types. The compositional generation (v2, the default) has six node
// types where probe, bucket, value_map and percentage nest inside each
// other:
//
//	type: bucket
//	buckets: [1, 5, 10]
//	source:
//	  type: value_map
//	  map: {a: 1, b: 2}
//	  source:
//	    type: probe
//	    histogram_name: Brave.Core.Example
//
// A Grammar is built once per run with New and validates definitions into
// typed Node trees. Validation is structural only; no node is evaluated.
// Walk, Depth, Sources and Outline inspect validated trees.
package grammar
