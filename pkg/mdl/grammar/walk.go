package grammar

import (
	mdlErrors "p3a-hq/manifest/pkg/mdl/errors"
)

// Visitor is called for every node of a definition, parents before
// children. path is relative to the definition root.
type Visitor interface {
	Visit(node Node, path mdlErrors.Path) error
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(node Node, path mdlErrors.Path) error

// Visit calls f(node, path).
func (f VisitorFunc) Visit(node Node, path mdlErrors.Path) error {
	return f(node, path)
}

// Walk traverses the tree rooted at node depth-first. It returns the first
// error returned by the visitor.
func Walk(node Node, visitor Visitor) error {
	return walk(node, nil, visitor)
}

func walk(node Node, path mdlErrors.Path, visitor Visitor) error {
	if node == nil {
		return nil
	}
	if err := visitor.Visit(node, path); err != nil {
		return err
	}
	for _, c := range node.Children() {
		if err := walk(c.Node, path.Join(c.Path), visitor); err != nil {
			return err
		}
	}
	return nil
}

// Depth returns the number of levels in the tree rooted at node. A leaf has
// depth 1.
func Depth(node Node) int {
	if node == nil {
		return 0
	}
	deepest := 0
	for _, c := range node.Children() {
		deepest = max(deepest, Depth(c.Node))
	}
	return deepest + 1
}

// Sources returns the nodes without children, which read raw signals, in
// traversal order.
func Sources(node Node) []Node {
	var leaves []Node
	_ = Walk(node, VisitorFunc(func(n Node, _ mdlErrors.Path) error {
		if len(n.Children()) == 0 {
			leaves = append(leaves, n)
		}
		return nil
	}))
	return leaves
}

// Count returns the number of nodes of each type in the tree.
func Count(node Node) map[NodeType]int {
	counts := make(map[NodeType]int)
	_ = Walk(node, VisitorFunc(func(n Node, _ mdlErrors.Path) error {
		counts[n.Type()]++
		return nil
	}))
	return counts
}
