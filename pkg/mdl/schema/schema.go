package schema

import (
	mdlErrors "p3a-hq/manifest/pkg/mdl/errors"
	"p3a-hq/manifest/pkg/mdl/grammar"
	"p3a-hq/manifest/pkg/mdl/shape"
	"p3a-hq/manifest/pkg/mdl/tree"
)

// Attribute is a dimension a metric can be reported with.
type Attribute string

const (
	AttributeAnswerIndex     Attribute = "answer_index"
	AttributeVersion         Attribute = "version"
	AttributeYOI             Attribute = "yoi"
	AttributeChannel         Attribute = "channel"
	AttributePlatform        Attribute = "platform"
	AttributeCountryCode     Attribute = "country_code"
	AttributeWOI             Attribute = "woi"
	AttributeGeneralPlatform Attribute = "general_platform"
	AttributeRegion          Attribute = "region"
	AttributeSubregion       Attribute = "subregion"
	AttributeRef             Attribute = "ref"
	AttributeDTOI            Attribute = "dtoi"
	AttributeDTOA            Attribute = "dtoa"
)

// Attributes lists every valid attribute.
var Attributes = []Attribute{
	AttributeAnswerIndex,
	AttributeVersion,
	AttributeYOI,
	AttributeChannel,
	AttributePlatform,
	AttributeCountryCode,
	AttributeWOI,
	AttributeGeneralPlatform,
	AttributeRegion,
	AttributeSubregion,
	AttributeRef,
	AttributeDTOI,
	AttributeDTOA,
}

// Cadence is how often a metric is reported.
type Cadence string

const (
	CadenceTypical Cadence = "typical"
	CadenceExpress Cadence = "express"
	CadenceSlow    Cadence = "slow"
)

// Cadences lists every valid cadence.
var Cadences = []Cadence{CadenceTypical, CadenceExpress, CadenceSlow}

// CadenceRequiredMessage is reported when a definition has no cadence.
const CadenceRequiredMessage = "cadence must be defined if definition is present"

// Declaration is one validated metric declaration file.
type Declaration struct {
	Ephemeral            *bool
	ConstellationOnly    *bool
	Nebula               *bool
	DisableCountryStrip  *bool
	Attributes           []Attribute
	AppendAttributes     []Attribute
	RecordActivationDate *bool
	ActivationMetricName *string
	Cadence              *Cadence
	Definition           *grammar.Definition

	// Raw is the declaration exactly as written. The manifest is built
	// from it so no value is rewritten and no default is added.
	Raw *tree.Mapping
}

// Schema validates whole declaration files.
type Schema struct {
	grammar *grammar.Grammar
	object  *shape.ObjectSchema
}

// New builds the declaration schema around a definition grammar.
func New(g *grammar.Grammar) *Schema {
	attribute := shape.Enum(attributeStrings()...)
	cadence := shape.Enum(cadenceStrings()...)

	object := shape.Object(
		shape.Optional("ephemeral", shape.Bool()),
		shape.Optional("constellation_only", shape.Bool()),
		shape.Optional("nebula", shape.Bool()),
		shape.Optional("disable_country_strip", shape.Bool()),
		shape.Optional("attributes", shape.Array(attribute)),
		shape.Optional("append_attributes", shape.Array(attribute)),
		shape.Optional("record_activation_date", shape.Bool()),
		shape.Optional("activation_metric_name", shape.String()),
		shape.Optional("cadence", cadence),
		shape.Optional("definition", g.Schema()),
	).Refine(
		"cadence-with-definition",
		mdlErrors.Path{mdlErrors.Key("cadence")},
		func(f shape.Fields) bool {
			return !f.Has("definition") || f.Has("cadence")
		},
		CadenceRequiredMessage,
	).Bind(func(f shape.Fields) any {
		d := &Declaration{
			Ephemeral:            f.BoolPtr("ephemeral"),
			ConstellationOnly:    f.BoolPtr("constellation_only"),
			Nebula:               f.BoolPtr("nebula"),
			DisableCountryStrip:  f.BoolPtr("disable_country_strip"),
			Attributes:           toAttributes(f.Strings("attributes")),
			AppendAttributes:     toAttributes(f.Strings("append_attributes")),
			RecordActivationDate: f.BoolPtr("record_activation_date"),
			ActivationMetricName: f.StringPtr("activation_metric_name"),
			Raw:                  f.Raw(),
		}
		if c := f.StringPtr("cadence"); c != nil {
			cad := Cadence(*c)
			d.Cadence = &cad
		}
		if v, ok := f.Get("definition"); ok {
			d.Definition, _ = v.(*grammar.Definition)
		}
		return d
	})

	return &Schema{grammar: g, object: object}
}

// Grammar returns the definition grammar the schema was built with.
func (s *Schema) Grammar() *grammar.Grammar {
	return s.grammar
}

// Fields returns the top-level keys a declaration may carry.
func (s *Schema) Fields() []string {
	return s.object.FieldNames()
}

// Validate checks one declaration. It returns the typed declaration, or
// every violation found.
func (s *Schema) Validate(v tree.Value) (*Declaration, *mdlErrors.ViolationList) {
	out, vl := shape.Validate(s.object, v)
	if vl != nil {
		return nil, vl
	}
	return out.(*Declaration), nil
}

func attributeStrings() []string {
	out := make([]string, len(Attributes))
	for i, a := range Attributes {
		out[i] = string(a)
	}
	return out
}

func cadenceStrings() []string {
	out := make([]string, len(Cadences))
	for i, c := range Cadences {
		out[i] = string(c)
	}
	return out
}

func toAttributes(values []string) []Attribute {
	if values == nil {
		return nil
	}
	out := make([]Attribute, len(values))
	for i, v := range values {
		out[i] = Attribute(v)
	}
	return out
}
