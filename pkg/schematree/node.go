package schematree

import (
	"github.com/goliatone/go-formflow/pkg/location"
)

// Kind distinguishes the three node shapes.
type Kind int

const (
	// KindLeaf holds a scalar or opaque value.
	KindLeaf Kind = iota
	// KindGroup is a nested object with a fixed set of named children.
	KindGroup
	// KindArray repeats its element children a variable number of times.
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindGroup:
		return "group"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Node is one element of a Tree. Nodes are immutable once the tree is built.
type Node struct {
	name     string
	kind     Kind
	typ      string
	parent   *Node
	children []*Node
	byName   map[string]*Node
	loc      location.Location
}

// Name returns the node's name within its parent.
func (n *Node) Name() string { return n.name }

// Kind returns the node shape.
func (n *Node) Kind() Kind { return n.kind }

// Type returns the optional value type hint (string, boolean, ...).
func (n *Node) Type() string { return n.typ }

// Parent returns the enclosing node, nil for section roots.
func (n *Node) Parent() *Node { return n.parent }

// Location returns the canonical address of the node.
func (n *Node) Location() location.Location { return n.loc }

// IsLeaf reports whether the node holds a value directly.
func (n *Node) IsLeaf() bool { return n.kind == KindLeaf }

// Children returns the node's children in declaration order. For arrays these
// are the fields of each element.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Child resolves a direct child by name.
func (n *Node) Child(name string) (*Node, bool) {
	child, ok := n.byName[name]
	return child, ok
}

// ArrayAncestors lists the enclosing array nodes, outermost first. The node
// itself is not included even when it is an array.
func (n *Node) ArrayAncestors() []*Node {
	var chain []*Node
	for current := n.parent; current != nil; current = current.parent {
		if current.kind == KindArray {
			chain = append(chain, current)
		}
	}
	for left, right := 0, len(chain)-1; left < right; left, right = left+1, right-1 {
		chain[left], chain[right] = chain[right], chain[left]
	}
	return chain
}
