package shape

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"

	mdlErrors "p3a-hq/manifest/pkg/mdl/errors"
	"p3a-hq/manifest/pkg/mdl/tree"
)

// StringSchema accepts string scalars and yields a string.
type StringSchema struct {
	min int
}

// String returns a schema accepting any string.
func String() *StringSchema {
	return &StringSchema{}
}

// Min returns a copy that requires at least n characters.
func (s *StringSchema) Min(n int) *StringSchema {
	c := *s
	c.min = n
	return &c
}

func (s *StringSchema) Describe() string { return "string" }

func (s *StringSchema) validate(v tree.Value, path mdlErrors.Path, vl *mdlErrors.ViolationList) (any, bool) {
	sv, ok := v.(*tree.String)
	if !ok || sv.Timestamp {
		typeMismatch(s, v, path, vl)
		return nil, false
	}
	if n := len([]rune(sv.Value)); n < s.min {
		vl.AddViolation(
			mdlErrors.ViolationStructural,
			fmt.Sprintf("Too small: expected string to have >=%d characters", s.min),
			path,
			sv.Loc,
		)
		return nil, false
	}
	return sv.Value, true
}

// NumberSchema accepts numeric scalars and yields a *apd.Decimal.
type NumberSchema struct {
	positive bool
}

// Number returns a schema accepting any finite number.
func Number() *NumberSchema {
	return &NumberSchema{}
}

// Positive returns a copy that requires a value strictly greater than zero.
func (s *NumberSchema) Positive() *NumberSchema {
	c := *s
	c.positive = true
	return &c
}

func (s *NumberSchema) Describe() string { return "number" }

func (s *NumberSchema) validate(v tree.Value, path mdlErrors.Path, vl *mdlErrors.ViolationList) (any, bool) {
	nv, ok := v.(*tree.Number)
	if !ok || nv.Value.Form != apd.Finite {
		typeMismatch(s, v, path, vl)
		return nil, false
	}
	if s.positive && nv.Value.Sign() <= 0 {
		vl.AddViolation(mdlErrors.ViolationStructural, "Too small: expected number to be >0", path, nv.Loc)
		return nil, false
	}
	return new(apd.Decimal).Set(&nv.Value), true
}

// BoolSchema accepts boolean scalars and yields a bool.
type BoolSchema struct{}

// Bool returns a schema accepting true or false.
func Bool() *BoolSchema {
	return &BoolSchema{}
}

func (s *BoolSchema) Describe() string { return "boolean" }

func (s *BoolSchema) validate(v tree.Value, path mdlErrors.Path, vl *mdlErrors.ViolationList) (any, bool) {
	bv, ok := v.(*tree.Bool)
	if !ok {
		typeMismatch(s, v, path, vl)
		return nil, false
	}
	return bv.Value, true
}

// EnumSchema accepts one string out of a closed set and yields it.
type EnumSchema struct {
	values []string
}

// Enum returns a schema accepting exactly the given strings.
func Enum(values ...string) *EnumSchema {
	return &EnumSchema{values: append([]string(nil), values...)}
}

// Values returns the allowed values in declaration order.
func (s *EnumSchema) Values() []string {
	return append([]string(nil), s.values...)
}

func (s *EnumSchema) Describe() string {
	return "one of " + quoteAll(s.values)
}

func (s *EnumSchema) validate(v tree.Value, path mdlErrors.Path, vl *mdlErrors.ViolationList) (any, bool) {
	sv, ok := v.(*tree.String)
	if ok {
		for _, allowed := range s.values {
			if sv.Value == allowed {
				return sv.Value, true
			}
		}
	}

	suggestion := ""
	received := tree.Describe(v)
	if ok {
		suggestion = mdlErrors.SuggestValue(sv.Value, s.values)
		received = fmt.Sprintf("%q", sv.Value)
	}
	vl.AddViolationWithSuggestion(
		mdlErrors.ViolationStructural,
		fmt.Sprintf("Invalid option: expected %s, received %s", s.Describe(), received),
		path,
		v.Location(),
		suggestion,
	)
	return nil, false
}

// LiteralSchema accepts a single string value.
type LiteralSchema struct {
	value string
}

// Literal returns a schema accepting only value.
func Literal(value string) *LiteralSchema {
	return &LiteralSchema{value: value}
}

func (s *LiteralSchema) Describe() string { return fmt.Sprintf("%q", s.value) }

func (s *LiteralSchema) validate(v tree.Value, path mdlErrors.Path, vl *mdlErrors.ViolationList) (any, bool) {
	sv, ok := v.(*tree.String)
	if !ok || sv.Value != s.value {
		vl.AddViolation(mdlErrors.ViolationStructural, "Invalid input: expected "+s.Describe(), path, v.Location())
		return nil, false
	}
	return sv.Value, true
}

// AnySchema accepts every value, null included, and yields it unchanged.
type AnySchema struct{}

// Any returns a schema that accepts every value.
func Any() *AnySchema {
	return &AnySchema{}
}

func (s *AnySchema) Describe() string { return "any" }

func (s *AnySchema) validate(v tree.Value, _ mdlErrors.Path, _ *mdlErrors.ViolationList) (any, bool) {
	return v, true
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, "|")
}
