package schematree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/location"
)

// ErrStopWalk can be returned from a WalkFunc to end the traversal early
// without reporting an error.
var ErrStopWalk = errors.New("schematree: stop walk")

// Spec describes a node to build. Use Leaf, Group and Array to construct it.
type Spec struct {
	Name     string
	Kind     Kind
	Type     string
	Children []Spec
}

// Leaf describes a value field.
func Leaf(name string) Spec {
	return Spec{Name: name, Kind: KindLeaf}
}

// TypedLeaf describes a value field carrying a type hint.
func TypedLeaf(name, typ string) Spec {
	return Spec{Name: name, Kind: KindLeaf, Type: typ}
}

// Group describes a nested object.
func Group(name string, children ...Spec) Spec {
	return Spec{Name: name, Kind: KindGroup, Children: children}
}

// Array describes a repeatable section whose elements hold the given fields.
func Array(name string, element ...Spec) Spec {
	return Spec{Name: name, Kind: KindArray, Children: element}
}

// Section is a named root of the form (for example "model" or "view").
type Section struct {
	Name   string
	Fields []Spec
}

// Tree is the immutable structure of one form.
type Tree struct {
	sections []*Node
	byKey    map[string]*Node
}

// New validates the specs and builds a Tree. Duplicate section or sibling
// names, empty names, and groups or arrays without children are rejected.
func New(sections ...Section) (*Tree, error) {
	if len(sections) == 0 {
		return nil, errors.New("schematree: at least one section is required")
	}
	tree := &Tree{byKey: make(map[string]*Node)}
	seen := make(map[string]struct{}, len(sections))

	for _, section := range sections {
		name := strings.TrimSpace(section.Name)
		if name == "" {
			return nil, errors.New("schematree: section name is required")
		}
		if strings.ContainsAny(name, ".[]/") {
			return nil, fmt.Errorf("schematree: section name %q contains a reserved character", name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("schematree: duplicate section %q", name)
		}
		seen[name] = struct{}{}

		root := &Node{
			name:   name,
			kind:   KindGroup,
			byName: make(map[string]*Node),
			loc:    location.Location{Section: name},
		}
		if err := tree.attach(root, section.Fields, root.loc); err != nil {
			return nil, err
		}
		tree.sections = append(tree.sections, root)
	}
	return tree, nil
}

// MustNew is New for static trees; it panics on invalid specs.
func MustNew(sections ...Section) *Tree {
	tree, err := New(sections...)
	if err != nil {
		panic(err)
	}
	return tree
}

func (t *Tree) attach(parent *Node, specs []Spec, base location.Location) error {
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return fmt.Errorf("schematree: empty field name under %s", parent.loc)
		}
		if strings.ContainsAny(name, ".[]/") {
			return fmt.Errorf("schematree: field name %q under %s contains a reserved character", name, parent.loc)
		}
		if _, dup := parent.byName[name]; dup {
			return fmt.Errorf("schematree: duplicate field %q under %s", name, parent.loc)
		}

		node := &Node{
			name:   name,
			kind:   spec.Kind,
			typ:    spec.Type,
			parent: parent,
			loc:    base.Child(name),
		}
		parent.children = append(parent.children, node)
		parent.byName[name] = node
		t.byKey[node.loc.Key()] = node

		switch spec.Kind {
		case KindLeaf:
			if len(spec.Children) > 0 {
				return fmt.Errorf("schematree: leaf %s cannot have children", node.loc)
			}
		case KindGroup:
			if len(spec.Children) == 0 {
				return fmt.Errorf("schematree: group %s has no fields", node.loc)
			}
			node.byName = make(map[string]*Node, len(spec.Children))
			if err := t.attach(node, spec.Children, node.loc); err != nil {
				return err
			}
		case KindArray:
			if len(spec.Children) == 0 {
				return fmt.Errorf("schematree: array %s has no element fields", node.loc)
			}
			node.byName = make(map[string]*Node, len(spec.Children))
			if err := t.attach(node, spec.Children, node.loc.Element()); err != nil {
				return err
			}
		default:
			return fmt.Errorf("schematree: field %s has unknown kind %d", node.loc, spec.Kind)
		}
	}
	return nil
}

// Sections returns the section names in declaration order.
func (t *Tree) Sections() []string {
	out := make([]string, len(t.sections))
	for idx, section := range t.sections {
		out[idx] = section.name
	}
	return out
}

// Section returns the root node of a section.
func (t *Tree) Section(name string) (*Node, bool) {
	for _, section := range t.sections {
		if section.name == name {
			return section, true
		}
	}
	return nil, false
}

// Resolve returns the node addressed by loc.
func (t *Tree) Resolve(loc location.Location) (*Node, bool) {
	if len(loc.Paths) == 0 {
		return t.Section(loc.Section)
	}
	node, ok := t.byKey[loc.Key()]
	return node, ok
}

// Find resolves a node by its plain name path from a section root, crossing
// array boundaries transparently: Find("model", "rules", "value").
func (t *Tree) Find(section string, names ...string) (*Node, bool) {
	current, ok := t.Section(section)
	if !ok {
		return nil, false
	}
	for _, name := range names {
		current, ok = current.Child(name)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// WalkFunc is called for every node during Walk.
type WalkFunc func(node *Node) error

// Walk visits every field depth-first in declaration order, parents before
// children. Section roots are not visited. Returning ErrStopWalk ends the walk
// without error.
func (t *Tree) Walk(fn WalkFunc) error {
	var visit func(nodes []*Node) error
	visit = func(nodes []*Node) error {
		for _, node := range nodes {
			if err := fn(node); err != nil {
				return err
			}
			if err := visit(node.children); err != nil {
				return err
			}
		}
		return nil
	}
	for _, section := range t.sections {
		if err := visit(section.children); err != nil {
			if errors.Is(err, ErrStopWalk) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Leaves returns every leaf in depth-first order.
func (t *Tree) Leaves() []*Node {
	var leaves []*Node
	_ = t.Walk(func(node *Node) error {
		if node.kind == KindLeaf {
			leaves = append(leaves, node)
		}
		return nil
	})
	return leaves
}
