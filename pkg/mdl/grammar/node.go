package grammar

import (
	"github.com/cockroachdb/apd/v3"

	mdlErrors "p3a-hq/manifest/pkg/mdl/errors"
	"p3a-hq/manifest/pkg/mdl/tree"
)

// NodeType is the literal value of a definition node's "type" field.
type NodeType string

const (
	NodeTypeTimePeriodEvents NodeType = "time_period_events"
	NodeTypePref             NodeType = "pref"
	NodeTypeProbe            NodeType = "probe"
	NodeTypeBucket           NodeType = "bucket"
	NodeTypeValueMap         NodeType = "value_map"
	NodeTypePercentage       NodeType = "percentage"
)

// Node is one validated definition node. Each concrete type owns its
// children; the structure is a tree.
type Node interface {
	Type() NodeType
	Children() []Child
	isNode()
}

// Child is an owned sub-node and the path to it from its parent.
type Child struct {
	Path mdlErrors.Path
	Node Node
}

// Definition is the root of a metric's definition.
type Definition struct {
	MinVersion *string
	Node       Node
}

// TimePeriodEvents counts events stored under a key over a rolling window
// (compositional generation).
type TimePeriodEvents struct {
	StorageKey        string
	PeriodDays        *apd.Decimal
	ReplaceToday      *bool
	ReportHighest     *bool
	AddHistogramValue *bool
	Sources           []Node
}

// Pref reads a preference value (compositional generation).
type Pref struct {
	PrefName        string
	UseProfilePrefs bool
}

// Probe reads a histogram, optionally keeping only some samples.
type Probe struct {
	HistogramName string
	Filter        []*apd.Decimal
}

// Bucket maps its source's value onto bucket boundaries.
type Bucket struct {
	Source  Node
	Buckets []*apd.Decimal
}

// ValueMap translates its source's value through a lookup table. Map keeps
// the table as written.
type ValueMap struct {
	Source Node
	Map    *tree.Mapping
}

// Percentage reports numerator over denominator, optionally scaled.
type Percentage struct {
	Numerator   Node
	Denominator Node
	Multiplier  *apd.Decimal
}

// FlatTimePeriodEvents is the self-contained time_period_events node of the
// flat generation.
type FlatTimePeriodEvents struct {
	PeriodDays                 *apd.Decimal
	HistogramName              string
	StorageKey                 string
	Buckets                    []*apd.Decimal
	ReportMax                  *bool
	AddHistogramValueToStorage *bool
	MinReportAmount            *apd.Decimal
}

// FlatPref is the pref node of the flat generation, carrying its own
// value_map.
type FlatPref struct {
	PrefName        string
	ValueMap        *tree.Mapping
	UseProfilePrefs *bool
}

func (*TimePeriodEvents) Type() NodeType     { return NodeTypeTimePeriodEvents }
func (*Pref) Type() NodeType                 { return NodeTypePref }
func (*Probe) Type() NodeType                { return NodeTypeProbe }
func (*Bucket) Type() NodeType               { return NodeTypeBucket }
func (*ValueMap) Type() NodeType             { return NodeTypeValueMap }
func (*Percentage) Type() NodeType           { return NodeTypePercentage }
func (*FlatTimePeriodEvents) Type() NodeType { return NodeTypeTimePeriodEvents }
func (*FlatPref) Type() NodeType             { return NodeTypePref }

func (n *TimePeriodEvents) Children() []Child {
	children := make([]Child, len(n.Sources))
	for i, s := range n.Sources {
		children[i] = Child{Path: mdlErrors.Path{}.Field("sources").At(i), Node: s}
	}
	return children
}

func (*Pref) Children() []Child  { return nil }
func (*Probe) Children() []Child { return nil }

func (n *Bucket) Children() []Child {
	return []Child{{Path: mdlErrors.Path{}.Field("source"), Node: n.Source}}
}

func (n *ValueMap) Children() []Child {
	return []Child{{Path: mdlErrors.Path{}.Field("source"), Node: n.Source}}
}

func (n *Percentage) Children() []Child {
	return []Child{
		{Path: mdlErrors.Path{}.Field("numerator"), Node: n.Numerator},
		{Path: mdlErrors.Path{}.Field("denominator"), Node: n.Denominator},
	}
}

func (*FlatTimePeriodEvents) Children() []Child { return nil }
func (*FlatPref) Children() []Child             { return nil }

func (*TimePeriodEvents) isNode()     {}
func (*Pref) isNode()                 {}
func (*Probe) isNode()                {}
func (*Bucket) isNode()               {}
func (*ValueMap) isNode()             {}
func (*Percentage) isNode()           {}
func (*FlatTimePeriodEvents) isNode() {}
func (*FlatPref) isNode()             {}
