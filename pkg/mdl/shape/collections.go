package shape

import (
	"fmt"

	mdlErrors "p3a-hq/manifest/pkg/mdl/errors"
	"p3a-hq/manifest/pkg/mdl/tree"
)

// ArraySchema accepts sequences whose items all match one schema. It yields
// a []any holding each item's typed result.
type ArraySchema struct {
	elem Schema
	min  int
}

// Array returns a schema for sequences of elem.
func Array(elem Schema) *ArraySchema {
	return &ArraySchema{elem: elem}
}

// Min returns a copy that requires at least n items.
func (s *ArraySchema) Min(n int) *ArraySchema {
	c := *s
	c.min = n
	return &c
}

func (s *ArraySchema) Describe() string { return "array" }

func (s *ArraySchema) validate(v tree.Value, path mdlErrors.Path, vl *mdlErrors.ViolationList) (any, bool) {
	seq, ok := v.(*tree.Sequence)
	if !ok {
		typeMismatch(s, v, path, vl)
		return nil, false
	}

	accepted := true
	if len(seq.Items) < s.min {
		vl.AddViolation(
			mdlErrors.ViolationStructural,
			fmt.Sprintf("Too small: expected array to have >=%d items", s.min),
			path,
			seq.Loc,
		)
		accepted = false
	}

	out := make([]any, len(seq.Items))
	for i, item := range seq.Items {
		r, ok := s.elem.validate(item, path.At(i), vl)
		if !ok {
			accepted = false
			continue
		}
		out[i] = r
	}

	if !accepted {
		return nil, false
	}
	return out, true
}

// RecordSchema accepts mappings with arbitrary string keys whose values all
// match one schema. It yields a map[string]any.
type RecordSchema struct {
	elem     Schema
	nonEmpty bool
	message  string
}

// Record returns a schema for mappings from string to elem.
func Record(elem Schema) *RecordSchema {
	return &RecordSchema{elem: elem}
}

// NonEmpty returns a copy that rejects mappings without keys. An empty
// message selects the default one.
func (s *RecordSchema) NonEmpty(message string) *RecordSchema {
	c := *s
	c.nonEmpty = true
	c.message = message
	if c.message == "" {
		c.message = "Too small: expected record to have >=1 entries"
	}
	return &c
}

func (s *RecordSchema) Describe() string { return "record" }

func (s *RecordSchema) validate(v tree.Value, path mdlErrors.Path, vl *mdlErrors.ViolationList) (any, bool) {
	m, ok := v.(*tree.Mapping)
	if !ok {
		typeMismatch(s, v, path, vl)
		return nil, false
	}

	accepted := true
	out := make(map[string]any, m.Len())
	for _, key := range m.Keys() {
		item, _ := m.Get(key)
		r, ok := s.elem.validate(item, path.Field(key), vl)
		if !ok {
			accepted = false
			continue
		}
		out[key] = r
	}

	if s.nonEmpty && m.Len() == 0 {
		vl.AddViolation(mdlErrors.ViolationStructural, s.message, path, m.Loc)
		accepted = false
	}

	if !accepted {
		return nil, false
	}
	return out, true
}
