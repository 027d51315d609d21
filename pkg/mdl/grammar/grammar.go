package grammar

import (
	"fmt"

	mdlErrors "p3a-hq/manifest/pkg/mdl/errors"
	"p3a-hq/manifest/pkg/mdl/shape"
	"p3a-hq/manifest/pkg/mdl/tree"
)

// Discriminator is the field that selects a node's variant.
const Discriminator = "type"

// Grammar is the definition schema of one generation. Build it once with
// New and share it; it holds no mutable state.
type Grammar struct {
	generation Generation
	node       *shape.UnionSchema
	root       shape.Schema
}

// New builds the grammar of the given generation.
func New(gen Generation) (*Grammar, error) {
	var node *shape.UnionSchema
	switch gen {
	case GenerationCompositional:
		node = compositional()
	case GenerationFlat:
		node = flat()
	default:
		return nil, fmt.Errorf("unknown schema generation %q", gen)
	}

	g := &Grammar{generation: gen, node: node}
	g.root = rootSchema(gen, node)
	return g, nil
}

// MustNew is New for generations known to be valid. It panics otherwise.
func MustNew(gen Generation) *Grammar {
	g, err := New(gen)
	if err != nil {
		panic(err)
	}
	return g
}

// Generation returns the generation the grammar was built for.
func (g *Grammar) Generation() Generation {
	return g.generation
}

// Schema returns the schema of a top-level definition. Its result is a
// *Definition.
func (g *Grammar) Schema() shape.Schema {
	return g.root
}

// NodeSchema returns the schema of a nested definition node. Its result is
// a Node.
func (g *Grammar) NodeSchema() shape.Schema {
	return g.node
}

// Tags returns the node types of the generation.
func (g *Grammar) Tags() []NodeType {
	tags := g.node.Tags()
	out := make([]NodeType, len(tags))
	for i, t := range tags {
		out[i] = NodeType(t)
	}
	return out
}

// Fields returns the keys accepted by a node type, or nil for an unknown
// type.
func (g *Grammar) Fields(t NodeType) []string {
	obj, ok := g.node.Variant(string(t))
	if !ok {
		return nil
	}
	return obj.FieldNames()
}

// Validate checks a definition subtree on its own.
func (g *Grammar) Validate(v tree.Value) (*Definition, *mdlErrors.ViolationList) {
	out, vl := shape.Validate(g.root, v)
	if vl != nil {
		return nil, vl
	}
	return out.(*Definition), nil
}

// rootSchema accepts min_version on the top-level node only, for the
// generations that know it.
func rootSchema(gen Generation, node *shape.UnionSchema) shape.Schema {
	top := node
	if gen == GenerationCompositional {
		top = node.Extend(shape.Optional("min_version", shape.String()))
	}
	return top.Map(func(result any, f shape.Fields) any {
		return &Definition{MinVersion: f.StringPtr("min_version"), Node: result.(Node)}
	})
}

// compositional declares the current grammar. Child fields refer back to
// the union itself through a lazy reference.
func compositional() *shape.UnionSchema {
	var node *shape.UnionSchema
	child := shape.Lazy(func() shape.Schema { return node })

	node = shape.Union(Discriminator,
		shape.Case(string(NodeTypeTimePeriodEvents), shape.Object(
			shape.Field("storage_key", shape.String().Min(1)),
			shape.Field("period_days", shape.Number().Positive()),
			shape.Optional("replace_today", shape.Bool()),
			shape.Optional("report_highest", shape.Bool()),
			shape.Optional("add_histogram_value", shape.Bool()),
			shape.Optional("sources", shape.Array(child)),
		).Bind(func(f shape.Fields) any {
			return &TimePeriodEvents{
				StorageKey:        f.String("storage_key"),
				PeriodDays:        f.Decimal("period_days"),
				ReplaceToday:      f.BoolPtr("replace_today"),
				ReportHighest:     f.BoolPtr("report_highest"),
				AddHistogramValue: f.BoolPtr("add_histogram_value"),
				Sources:           nodes(f.Items("sources")),
			}
		})),

		shape.Case(string(NodeTypePref), shape.Object(
			shape.Field("pref_name", shape.String().Min(1)),
			shape.Field("use_profile_prefs", shape.Bool()),
		).Bind(func(f shape.Fields) any {
			return &Pref{
				PrefName:        f.String("pref_name"),
				UseProfilePrefs: f.Bool("use_profile_prefs"),
			}
		})),

		shape.Case(string(NodeTypeProbe), shape.Object(
			shape.Field("histogram_name", shape.String().Min(1)),
			shape.Optional("filter", shape.Array(shape.Number())),
		).Bind(func(f shape.Fields) any {
			return &Probe{
				HistogramName: f.String("histogram_name"),
				Filter:        f.Decimals("filter"),
			}
		})),

		shape.Case(string(NodeTypeBucket), shape.Object(
			shape.Field("source", child),
			shape.Field("buckets", shape.Array(shape.Number()).Min(1)),
		).Bind(func(f shape.Fields) any {
			return &Bucket{
				Source:  nodeField(f, "source"),
				Buckets: f.Decimals("buckets"),
			}
		})),

		shape.Case(string(NodeTypeValueMap), shape.Object(
			shape.Field("source", child),
			shape.Field("map", shape.Record(shape.Any()).NonEmpty("map must not be empty")),
		).Bind(func(f shape.Fields) any {
			return &ValueMap{
				Source: nodeField(f, "source"),
				Map:    mappingField(f, "map"),
			}
		})),

		shape.Case(string(NodeTypePercentage), shape.Object(
			shape.Field("numerator", child),
			shape.Field("denominator", child),
			shape.Optional("multiplier", shape.Number()),
		).Bind(func(f shape.Fields) any {
			return &Percentage{
				Numerator:   nodeField(f, "numerator"),
				Denominator: nodeField(f, "denominator"),
				Multiplier:  f.Decimal("multiplier"),
			}
		})),
	)
	return node
}

// flat declares the original grammar. Nodes do not nest.
func flat() *shape.UnionSchema {
	return shape.Union(Discriminator,
		shape.Case(string(NodeTypeTimePeriodEvents), shape.Object(
			shape.Field("period_days", shape.Number().Positive()),
			shape.Field("histogram_name", shape.String().Min(1)),
			shape.Field("storage_key", shape.String().Min(1)),
			shape.Field("buckets", shape.Array(shape.Number()).Min(1)),
			shape.Optional("report_max", shape.Bool()),
			shape.Optional("add_histogram_value_to_storage", shape.Bool()),
			shape.Optional("min_report_amount", shape.Number()),
		).Bind(func(f shape.Fields) any {
			return &FlatTimePeriodEvents{
				PeriodDays:                 f.Decimal("period_days"),
				HistogramName:              f.String("histogram_name"),
				StorageKey:                 f.String("storage_key"),
				Buckets:                    f.Decimals("buckets"),
				ReportMax:                  f.BoolPtr("report_max"),
				AddHistogramValueToStorage: f.BoolPtr("add_histogram_value_to_storage"),
				MinReportAmount:            f.Decimal("min_report_amount"),
			}
		})),

		shape.Case(string(NodeTypePref), shape.Object(
			shape.Field("pref_name", shape.String().Min(1)),
			shape.Field("value_map", shape.Record(shape.Any()).NonEmpty("value_map must not be empty")),
			shape.Optional("use_profile_prefs", shape.Bool()),
		).Bind(func(f shape.Fields) any {
			return &FlatPref{
				PrefName:        f.String("pref_name"),
				ValueMap:        mappingField(f, "value_map"),
				UseProfilePrefs: f.BoolPtr("use_profile_prefs"),
			}
		})),
	)
}

func nodeField(f shape.Fields, key string) Node {
	v, _ := f.Get(key)
	n, _ := v.(Node)
	return n
}

func nodes(items []any) []Node {
	if items == nil {
		return nil
	}
	out := make([]Node, 0, len(items))
	for _, item := range items {
		if n, ok := item.(Node); ok {
			out = append(out, n)
		}
	}
	return out
}

// mappingField returns the mapping as written, keeping key order.
func mappingField(f shape.Fields, key string) *tree.Mapping {
	v, _ := f.Value(key)
	m, _ := v.(*tree.Mapping)
	return m
}
