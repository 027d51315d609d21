package tree

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Kind identifies the shape of a raw value.
type Kind string

const (
	KindNull     Kind = "null"
	KindBool     Kind = "boolean"
	KindNumber   Kind = "number"
	KindString   Kind = "string"
	KindSequence Kind = "array"
	KindMapping  Kind = "object"
)

// Value is an untyped node of a declaration document. It is one of
// *Null, *Bool, *Number, *String, *Sequence or *Mapping.
type Value interface {
	Kind() Kind
	Location() Location
	isValue()
}

// Null is an explicit YAML null (~, null or an empty value).
type Null struct {
	Loc Location
}

// Bool is a boolean scalar.
type Bool struct {
	Value bool
	Loc   Location
}

// Number is a numeric scalar held as an exact decimal.
type Number struct {
	Value apd.Decimal
	Loc   Location
}

// String is a string scalar. Timestamp marks a plain YAML timestamp kept
// as its literal text; string schemas reject it.
type String struct {
	Value     string
	Timestamp bool
	Loc       Location
}

// Sequence is an ordered list of values.
type Sequence struct {
	Items []Value
	Loc   Location
}

// Mapping is a string-keyed map that remembers key insertion order.
type Mapping struct {
	keys    []string
	values  map[string]Value
	keyLocs map[string]Location
	Loc     Location
}

func (*Null) Kind() Kind     { return KindNull }
func (*Bool) Kind() Kind     { return KindBool }
func (*Number) Kind() Kind   { return KindNumber }
func (*String) Kind() Kind   { return KindString }
func (*Sequence) Kind() Kind { return KindSequence }
func (*Mapping) Kind() Kind  { return KindMapping }

func (n *Null) Location() Location     { return n.Loc }
func (b *Bool) Location() Location     { return b.Loc }
func (n *Number) Location() Location   { return n.Loc }
func (s *String) Location() Location   { return s.Loc }
func (s *Sequence) Location() Location { return s.Loc }
func (m *Mapping) Location() Location  { return m.Loc }

func (*Null) isValue()     {}
func (*Bool) isValue()     {}
func (*Number) isValue()   {}
func (*String) isValue()   {}
func (*Sequence) isValue() {}
func (*Mapping) isValue()  {}

// NewMapping creates an empty mapping at the given location.
func NewMapping(loc Location) *Mapping {
	return &Mapping{
		values:  make(map[string]Value),
		keyLocs: make(map[string]Location),
		Loc:     loc,
	}
}

// Set stores value under key. A new key is appended to the key order;
// an existing key keeps its position.
func (m *Mapping) Set(key string, value Value) {
	m.SetAt(key, value, Location{})
}

// SetAt is Set with the source location of the key itself.
func (m *Mapping) SetAt(key string, value Value, keyLoc Location) {
	if m.values == nil {
		m.values = make(map[string]Value)
		m.keyLocs = make(map[string]Location)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	if keyLoc.IsValid() {
		m.keyLocs[key] = keyLoc
	}
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	return len(m.keys)
}

// KeyLocation returns where key was written, falling back to the location
// of its value and then of the mapping.
func (m *Mapping) KeyLocation(key string) Location {
	if loc, ok := m.keyLocs[key]; ok {
		return loc
	}
	if v, ok := m.values[key]; ok && v.Location().IsValid() {
		return v.Location()
	}
	return m.Loc
}

// Str builds a string value without location. Used by tests and tools.
func Str(s string) *String {
	return &String{Value: s}
}

// Boolean builds a boolean value without location.
func Boolean(b bool) *Bool {
	return &Bool{Value: b}
}

// Int builds an integer number value without location.
func Int(i int64) *Number {
	n := &Number{}
	n.Value.SetInt64(i)
	return n
}

// Num parses a decimal literal into a number value. It panics on malformed
// input and is intended for literals in code.
func Num(s string) *Number {
	n := &Number{}
	if _, _, err := n.Value.SetString(s); err != nil {
		panic(fmt.Sprintf("tree.Num(%q): %v", s, err))
	}
	return n
}

// Seq builds a sequence value without location.
func Seq(items ...Value) *Sequence {
	return &Sequence{Items: items}
}

// Map builds a mapping from alternating key, value arguments. Keys must be
// strings and values must be Values; it panics otherwise.
func Map(kv ...any) *Mapping {
	if len(kv)%2 != 0 {
		panic("tree.Map: odd number of arguments")
	}
	m := NewMapping(Location{})
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("tree.Map: key %v is not a string", kv[i]))
		}
		val, ok := kv[i+1].(Value)
		if !ok {
			panic(fmt.Sprintf("tree.Map: value for %q is not a tree.Value", key))
		}
		m.Set(key, val)
	}
	return m
}

// Equal reports whether a and b are structurally equal. Locations are
// ignored, numbers compare by value and mappings compare regardless of key
// order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case *Null:
		return true
	case *Bool:
		return av.Value == b.(*Bool).Value
	case *Number:
		bv := b.(*Number)
		return av.Value.Cmp(&bv.Value) == 0
	case *String:
		return av.Value == b.(*String).Value
	case *Sequence:
		bv := b.(*Sequence)
		if len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *Mapping:
		bv := b.(*Mapping)
		if av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.keys {
			other, ok := bv.values[k]
			if !ok || !Equal(av.values[k], other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Describe returns a short description of v for error messages.
func Describe(v Value) string {
	if v == nil {
		return "nothing"
	}
	if s, ok := v.(*String); ok && s.Timestamp {
		return "date"
	}
	return string(v.Kind())
}
