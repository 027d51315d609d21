package tree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// yamlLinePattern extracts the line number yaml.v3 embeds in its messages.
var yamlLinePattern = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

// ErrEmptyDocument is returned when a declaration file holds no document.
var ErrEmptyDocument = errors.New("empty declaration")

// SyntaxError describes a declaration that could not be turned into a tree.
type SyntaxError struct {
	Loc     Location
	Message string
	Err     error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Loc.IsValid() {
		return fmt.Sprintf("%s: %s", e.Loc, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying decoder error, if any.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Parse decodes a single YAML document into a Value. Locations in the tree
// refer to file. Multi-document streams, custom tags, non-finite numbers,
// duplicate keys and recursive aliases are rejected.
func Parse(data []byte, file string) (Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SyntaxError{Loc: Location{File: file}, Message: ErrEmptyDocument.Error(), Err: ErrEmptyDocument}
		}
		return nil, wrapYAMLError(err, file)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); err == nil {
		return nil, &SyntaxError{
			Loc:     Location{File: file, Line: extra.Line, Column: extra.Column},
			Message: "expected a single document, found more",
		}
	} else if !errors.Is(err, io.EOF) {
		return nil, wrapYAMLError(err, file)
	}

	c := &converter{file: file, expanding: make(map[*yaml.Node]bool)}
	v, err := c.convert(&doc)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &SyntaxError{Loc: Location{File: file}, Message: ErrEmptyDocument.Error(), Err: ErrEmptyDocument}
	}
	return v, nil
}

func wrapYAMLError(err error, file string) error {
	loc := Location{File: file}
	msg := err.Error()
	if m := yamlLinePattern.FindStringSubmatch(msg); m != nil {
		loc.Line, _ = strconv.Atoi(m[1])
		loc.Column = 1
		msg = m[2]
	}
	return &SyntaxError{Loc: loc, Message: msg, Err: err}
}

// converter turns yaml.Node trees into Values.
type converter struct {
	file string
	// expanding holds the anchors currently being expanded, to detect
	// aliases that refer to themselves.
	expanding map[*yaml.Node]bool
}

func (c *converter) loc(n *yaml.Node) Location {
	return Location{File: c.file, Line: n.Line, Column: n.Column}
}

func (c *converter) errorf(n *yaml.Node, format string, args ...any) error {
	return &SyntaxError{Loc: c.loc(n), Message: fmt.Sprintf(format, args...)}
}

func (c *converter) convert(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, c.errorf(n, "unknown anchor %q", n.Value)
		}
		if c.expanding[n.Alias] {
			return nil, c.errorf(n, "alias %q refers to itself", n.Value)
		}
		c.expanding[n.Alias] = true
		defer delete(c.expanding, n.Alias)
		return c.convert(n.Alias)
	case yaml.ScalarNode:
		return c.scalar(n)
	case yaml.SequenceNode:
		seq := &Sequence{Items: make([]Value, 0, len(n.Content)), Loc: c.loc(n)}
		for _, item := range n.Content {
			v, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			seq.Items = append(seq.Items, v)
		}
		return seq, nil
	case yaml.MappingNode:
		return c.mapping(n)
	default:
		return nil, c.errorf(n, "unsupported YAML node kind %d", n.Kind)
	}
}

func (c *converter) scalar(n *yaml.Node) (Value, error) {
	loc := c.loc(n)

	switch n.ShortTag() {
	case "!!null":
		return &Null{Loc: loc}, nil
	case "!!str", "!!binary":
		return &String{Value: n.Value, Loc: loc}, nil
	case "!!timestamp":
		return &String{Value: n.Value, Timestamp: true, Loc: loc}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, c.errorf(n, "invalid boolean %q", n.Value)
		}
		return &Bool{Value: b, Loc: loc}, nil
	case "!!int", "!!float":
		return c.number(n)
	default:
		return nil, c.errorf(n, "unsupported tag %s", n.Tag)
	}
}

func (c *converter) number(n *yaml.Node) (Value, error) {
	var raw any
	if err := n.Decode(&raw); err != nil {
		return nil, c.errorf(n, "invalid number %q", n.Value)
	}

	num := &Number{Loc: c.loc(n)}
	switch v := raw.(type) {
	case int:
		num.Value.SetInt64(int64(v))
	case int64:
		num.Value.SetInt64(v)
	case uint64:
		if _, _, err := num.Value.SetString(strconv.FormatUint(v, 10)); err != nil {
			return nil, c.errorf(n, "invalid number %q", n.Value)
		}
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, c.errorf(n, "number %q is not finite", n.Value)
		}
		if _, _, err := num.Value.SetString(strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
			return nil, c.errorf(n, "invalid number %q", n.Value)
		}
	default:
		return nil, c.errorf(n, "invalid number %q", n.Value)
	}
	return num, nil
}

func (c *converter) mapping(n *yaml.Node) (Value, error) {
	m := NewMapping(c.loc(n))
	// merged holds keys taken from a merge that an explicit key may still
	// override. The key keeps the position of the merge.
	merged := make(map[string]bool)

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		for keyNode.Kind == yaml.AliasNode && keyNode.Alias != nil {
			keyNode = keyNode.Alias
		}

		if keyNode.Kind != yaml.ScalarNode {
			return nil, c.errorf(keyNode, "mapping keys must be scalars")
		}
		if keyNode.ShortTag() == "!!merge" {
			if err := c.merge(m, valNode, merged); err != nil {
				return nil, err
			}
			continue
		}

		key := keyNode.Value
		if keyNode.ShortTag() == "!!null" {
			key = "null"
		}
		if m.Has(key) && !merged[key] {
			return nil, c.errorf(keyNode, "mapping key %q already defined", key)
		}
		delete(merged, key)

		v, err := c.convert(valNode)
		if err != nil {
			return nil, err
		}
		m.SetAt(key, v, c.loc(keyNode))
	}

	return m, nil
}

// merge copies the keys of src that dst does not hold yet, recording them
// in merged. Keys already present, explicit or merged earlier, win.
func (c *converter) merge(dst *Mapping, src *yaml.Node, merged map[string]bool) error {
	v, err := c.convert(src)
	if err != nil {
		return err
	}

	var sources []*Mapping
	switch tv := v.(type) {
	case *Mapping:
		sources = append(sources, tv)
	case *Sequence:
		for _, item := range tv.Items {
			sm, ok := item.(*Mapping)
			if !ok {
				return c.errorf(src, "merge sequence may only contain mappings")
			}
			sources = append(sources, sm)
		}
	default:
		return c.errorf(src, "merge value must be a mapping or a sequence of mappings")
	}

	for _, sm := range sources {
		for _, key := range sm.keys {
			if dst.Has(key) {
				continue
			}
			dst.SetAt(key, sm.values[key], sm.KeyLocation(key))
			merged[key] = true
		}
	}
	return nil
}
