package shape

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	mdlErrors "p3a-hq/manifest/pkg/mdl/errors"
	"p3a-hq/manifest/pkg/mdl/tree"
)

// FieldSpec declares one key of an object schema.
type FieldSpec struct {
	Name     string
	Schema   Schema
	Optional bool
}

// Field declares a required key.
func Field(name string, s Schema) FieldSpec {
	return FieldSpec{Name: name, Schema: s}
}

// Optional declares a key that may be absent. No default is produced.
func Optional(name string, s Schema) FieldSpec {
	return FieldSpec{Name: name, Schema: s, Optional: true}
}

// refinement is a named cross-field predicate over an object.
type refinement struct {
	name      string
	path      mdlErrors.Path
	predicate func(Fields) bool
	message   string
}

// ObjectSchema accepts mappings with a closed set of keys. Keys not declared
// are violations, reported one per key.
type ObjectSchema struct {
	fields      []FieldSpec
	refinements []refinement
	bind        func(Fields) any
}

// Object returns a strict object schema with the given fields.
func Object(fields ...FieldSpec) *ObjectSchema {
	return &ObjectSchema{fields: append([]FieldSpec(nil), fields...)}
}

// Extend returns a copy with extra fields. A field with an existing name
// replaces the earlier declaration.
func (o *ObjectSchema) Extend(fields ...FieldSpec) *ObjectSchema {
	c := o.clone()
	for _, f := range fields {
		replaced := false
		for i := range c.fields {
			if c.fields[i].Name == f.Name {
				c.fields[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			c.fields = append(c.fields, f)
		}
	}
	return c
}

// Refine returns a copy carrying a cross-field rule. The predicate runs
// whenever the input is a mapping, after every field was checked, so a
// failing rule is reported alongside structural violations. The violation
// is attached to path, relative to the object.
func (o *ObjectSchema) Refine(name string, path mdlErrors.Path, predicate func(Fields) bool, message string) *ObjectSchema {
	c := o.clone()
	c.refinements = append(c.refinements, refinement{
		name:      name,
		path:      path,
		predicate: predicate,
		message:   message,
	})
	return c
}

// Bind returns a copy that converts accepted fields into a typed result.
// Without Bind the result is the Fields value itself.
func (o *ObjectSchema) Bind(fn func(Fields) any) *ObjectSchema {
	c := o.clone()
	c.bind = fn
	return c
}

// FieldNames returns the declared keys in declaration order.
func (o *ObjectSchema) FieldNames() []string {
	names := make([]string, len(o.fields))
	for i, f := range o.fields {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the declaration of a key.
func (o *ObjectSchema) Lookup(name string) (FieldSpec, bool) {
	for _, f := range o.fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

func (o *ObjectSchema) clone() *ObjectSchema {
	return &ObjectSchema{
		fields:      append([]FieldSpec(nil), o.fields...),
		refinements: append([]refinement(nil), o.refinements...),
		bind:        o.bind,
	}
}

func (o *ObjectSchema) Describe() string { return "object" }

func (o *ObjectSchema) validate(v tree.Value, path mdlErrors.Path, vl *mdlErrors.ViolationList) (any, bool) {
	f, ok := o.validateFields(v, path, vl)
	if !ok {
		return nil, false
	}
	return o.result(f), true
}

func (o *ObjectSchema) result(f Fields) any {
	if o.bind == nil {
		return f
	}
	return o.bind(f)
}

func (o *ObjectSchema) validateFields(v tree.Value, path mdlErrors.Path, vl *mdlErrors.ViolationList) (Fields, bool) {
	m, ok := v.(*tree.Mapping)
	if !ok {
		typeMismatch(o, v, path, vl)
		return Fields{}, false
	}

	before := vl.Count()
	f := Fields{raw: m, values: make(map[string]any, len(o.fields))}

	// Declared fields, in declaration order.
	for _, spec := range o.fields {
		item, present := m.Get(spec.Name)
		if !present {
			if !spec.Optional {
				vl.AddViolationWithSuggestion(
					mdlErrors.ViolationStructural,
					missingMessage(spec.Schema),
					path.Field(spec.Name),
					m.Loc,
					mdlErrors.SuggestMissingField(spec.Name, ""),
				)
			}
			continue
		}
		if r, ok := spec.Schema.validate(item, path.Field(spec.Name), vl); ok {
			f.values[spec.Name] = r
		}
	}

	// Unknown keys, in source order.
	names := o.FieldNames()
	for _, key := range m.Keys() {
		if _, declared := o.Lookup(key); declared {
			continue
		}
		vl.AddViolationWithSuggestion(
			mdlErrors.ViolationStructural,
			fmt.Sprintf("Unrecognized key: %q", key),
			path.Field(key),
			m.KeyLocation(key),
			mdlErrors.SuggestFieldName(key, names),
		)
	}

	for _, r := range o.refinements {
		if r.predicate(f) {
			continue
		}
		loc := m.Loc
		if len(r.path) == 1 && !r.path[0].IsIndex && m.Has(r.path[0].Key) {
			loc = m.KeyLocation(r.path[0].Key)
		}
		vl.AddViolation(mdlErrors.ViolationRefinement, r.message, path.Join(r.path), loc)
	}

	return f, vl.Count() == before
}

// Fields gives refinements and Bind functions access to one object's input
// and to the typed results of the fields that were accepted.
type Fields struct {
	raw    *tree.Mapping
	values map[string]any
}

// Raw returns the mapping the object was validated from.
func (f Fields) Raw() *tree.Mapping {
	return f.raw
}

// Has reports whether key was present in the input, valid or not.
func (f Fields) Has(key string) bool {
	return f.raw != nil && f.raw.Has(key)
}

// Get returns the typed result of an accepted field.
func (f Fields) Get(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

// String returns a string field, or "" when absent.
func (f Fields) String(key string) string {
	s, _ := f.values[key].(string)
	return s
}

// StringPtr returns a string field, or nil when absent.
func (f Fields) StringPtr(key string) *string {
	s, ok := f.values[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// Bool returns a boolean field, or false when absent.
func (f Fields) Bool(key string) bool {
	b, _ := f.values[key].(bool)
	return b
}

// BoolPtr returns a boolean field, or nil when absent.
func (f Fields) BoolPtr(key string) *bool {
	b, ok := f.values[key].(bool)
	if !ok {
		return nil
	}
	return &b
}

// Decimal returns a number field, or nil when absent.
func (f Fields) Decimal(key string) *apd.Decimal {
	d, _ := f.values[key].(*apd.Decimal)
	return d
}

// Decimals returns an array-of-numbers field.
func (f Fields) Decimals(key string) []*apd.Decimal {
	items, _ := f.values[key].([]any)
	if items == nil {
		return nil
	}
	out := make([]*apd.Decimal, 0, len(items))
	for _, item := range items {
		if d, ok := item.(*apd.Decimal); ok {
			out = append(out, d)
		}
	}
	return out
}

// Strings returns an array-of-strings field.
func (f Fields) Strings(key string) []string {
	items, _ := f.values[key].([]any)
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Items returns an array field's typed items.
func (f Fields) Items(key string) []any {
	items, _ := f.values[key].([]any)
	return items
}

// Value returns the raw input under key.
func (f Fields) Value(key string) (tree.Value, bool) {
	if f.raw == nil {
		return nil, false
	}
	return f.raw.Get(key)
}
