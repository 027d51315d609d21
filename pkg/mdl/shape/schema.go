package shape

import (
	"fmt"

	mdlErrors "p3a-hq/manifest/pkg/mdl/errors"
	"p3a-hq/manifest/pkg/mdl/tree"
)

// Schema describes the accepted shape of a tree value. Schemas are immutable
// once built and safe for concurrent use.
type Schema interface {
	// Describe names the expected shape in messages, e.g. "string".
	Describe() string

	// validate checks v at path, appending every violation to vl. It returns
	// the typed result and whether v was accepted.
	validate(v tree.Value, path mdlErrors.Path, vl *mdlErrors.ViolationList) (any, bool)
}

// Validate checks v against s and returns the typed result. On failure the
// result is nil and the list holds every violation found.
func Validate(s Schema, v tree.Value) (any, *mdlErrors.ViolationList) {
	vl := mdlErrors.NewViolationList()

	if v == nil {
		vl.AddViolation(mdlErrors.ViolationStructural, missingMessage(s), nil, tree.Location{})
		return nil, vl
	}

	out, ok := s.validate(v, nil, vl)
	if !ok || vl.HasViolations() {
		return nil, vl
	}
	return out, nil
}

func missingMessage(s Schema) string {
	return fmt.Sprintf("Invalid input: expected %s, received undefined", s.Describe())
}

func typeMismatch(s Schema, v tree.Value, path mdlErrors.Path, vl *mdlErrors.ViolationList) {
	vl.AddViolation(
		mdlErrors.ViolationStructural,
		fmt.Sprintf("Invalid input: expected %s, received %s", s.Describe(), tree.Describe(v)),
		path,
		v.Location(),
	)
}
