package errors

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Segment is one step of a Path: a mapping key or a sequence index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns a segment naming a mapping key.
func Key(name string) Segment {
	return Segment{Key: name}
}

// Index returns a segment naming a sequence position.
func Index(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

// String returns the key, or the index in decimal.
func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Path locates a value inside one declaration, from the document root.
type Path []Segment

// ParsePath splits a dotted path. Purely numeric segments become indices.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ".")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if i, err := strconv.Atoi(part); err == nil && i >= 0 {
			p = append(p, Index(i))
			continue
		}
		p = append(p, Key(part))
	}
	return p
}

// Child returns a new path extended by seg. The receiver is not modified.
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Field is shorthand for p.Child(Key(name)).
func (p Path) Field(name string) Path {
	return p.Child(Key(name))
}

// At is shorthand for p.Child(Index(i)).
func (p Path) At(i int) Path {
	return p.Child(Index(i))
}

// Join returns p followed by rel.
func (p Path) Join(rel Path) Path {
	out := make(Path, 0, len(p)+len(rel))
	out = append(out, p...)
	return append(out, rel...)
}

// String joins the segments with dots, e.g. "definition.sources.0.type".
// The root path renders as the empty string.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ".")
}

// Equal reports whether both paths name the same location.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the path as an array of keys and indices.
func (p Path) MarshalJSON() ([]byte, error) {
	out := make([]any, len(p))
	for i, seg := range p {
		if seg.IsIndex {
			out[i] = seg.Index
		} else {
			out[i] = seg.Key
		}
	}
	return json.Marshal(out)
}
