package shape

import (
	"fmt"
	"sync"

	mdlErrors "p3a-hq/manifest/pkg/mdl/errors"
	"p3a-hq/manifest/pkg/mdl/tree"
)

// Variant is one case of a discriminated union.
type Variant struct {
	Tag    string
	Object *ObjectSchema
}

// Case declares a variant selected by tag. The discriminator field is added
// to obj by Union.
func Case(tag string, obj *ObjectSchema) Variant {
	return Variant{Tag: tag, Object: obj}
}

// UnionSchema dispatches on a literal string tag and validates the input
// against the matching variant only.
type UnionSchema struct {
	discriminator string
	variants      []Variant
	byTag         map[string]*ObjectSchema
	mapper        func(any, Fields) any
}

// Union returns a discriminated union keyed by the discriminator field.
func Union(discriminator string, variants ...Variant) *UnionSchema {
	u := &UnionSchema{
		discriminator: discriminator,
		byTag:         make(map[string]*ObjectSchema, len(variants)),
	}
	for _, v := range variants {
		obj := v.Object.Extend(Field(discriminator, Literal(v.Tag)))
		u.variants = append(u.variants, Variant{Tag: v.Tag, Object: obj})
		u.byTag[v.Tag] = obj
	}
	return u
}

// Tags returns the accepted tags in declaration order.
func (u *UnionSchema) Tags() []string {
	tags := make([]string, len(u.variants))
	for i, v := range u.variants {
		tags[i] = v.Tag
	}
	return tags
}

// Variant returns the object schema of one tag.
func (u *UnionSchema) Variant(tag string) (*ObjectSchema, bool) {
	obj, ok := u.byTag[tag]
	return obj, ok
}

// Extend returns a copy where every variant accepts the extra fields.
func (u *UnionSchema) Extend(fields ...FieldSpec) *UnionSchema {
	c := &UnionSchema{
		discriminator: u.discriminator,
		byTag:         make(map[string]*ObjectSchema, len(u.variants)),
		mapper:        u.mapper,
	}
	for _, v := range u.variants {
		obj := v.Object.Extend(fields...)
		c.variants = append(c.variants, Variant{Tag: v.Tag, Object: obj})
		c.byTag[v.Tag] = obj
	}
	return c
}

// Map returns a copy that post-processes each accepted variant result.
// fn receives the variant's result and its fields.
func (u *UnionSchema) Map(fn func(result any, f Fields) any) *UnionSchema {
	c := *u
	c.mapper = fn
	return &c
}

func (u *UnionSchema) Describe() string {
	return fmt.Sprintf("object with %s one of %s", u.discriminator, quoteAll(u.Tags()))
}

func (u *UnionSchema) validate(v tree.Value, path mdlErrors.Path, vl *mdlErrors.ViolationList) (any, bool) {
	m, ok := v.(*tree.Mapping)
	if !ok {
		vl.AddViolation(
			mdlErrors.ViolationStructural,
			fmt.Sprintf("Invalid input: expected object, received %s", tree.Describe(v)),
			path,
			v.Location(),
		)
		return nil, false
	}

	tagPath := path.Field(u.discriminator)
	raw, present := m.Get(u.discriminator)
	if !present {
		vl.AddViolation(
			mdlErrors.ViolationStructural,
			fmt.Sprintf("Invalid input: expected %s to be one of %s, received undefined", u.discriminator, quoteAll(u.Tags())),
			tagPath,
			m.Loc,
		)
		return nil, false
	}

	tag, isString := raw.(*tree.String)
	var obj *ObjectSchema
	if isString {
		obj = u.byTag[tag.Value]
	}
	if obj == nil {
		suggestion := ""
		if isString {
			suggestion = mdlErrors.SuggestValue(tag.Value, u.Tags())
		}
		vl.AddViolationWithSuggestion(
			mdlErrors.ViolationStructural,
			fmt.Sprintf("Invalid discriminator value: expected one of %s", quoteAll(u.Tags())),
			tagPath,
			raw.Location(),
			suggestion,
		)
		return nil, false
	}

	f, ok := obj.validateFields(m, path, vl)
	if !ok {
		return nil, false
	}
	out := obj.result(f)
	if u.mapper != nil {
		out = u.mapper(out, f)
	}
	return out, true
}

// LazySchema defers building a schema until first use, which lets a schema
// refer to itself.
type LazySchema struct {
	once  sync.Once
	build func() Schema
	s     Schema
}

// Lazy returns a schema resolved by calling build once, on first use.
func Lazy(build func() Schema) *LazySchema {
	return &LazySchema{build: build}
}

func (l *LazySchema) resolve() Schema {
	l.once.Do(func() {
		l.s = l.build()
	})
	return l.s
}

func (l *LazySchema) Describe() string { return l.resolve().Describe() }

func (l *LazySchema) validate(v tree.Value, path mdlErrors.Path, vl *mdlErrors.ViolationList) (any, bool) {
	return l.resolve().validate(v, path, vl)
}
