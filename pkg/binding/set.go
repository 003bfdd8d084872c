package binding

import (
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/schematree"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

// Set is the immutable result of resolution.
type Set struct {
	tree     *schematree.Tree
	bindings []*Binding
	byID     map[provider.ID]*Binding
	direct   map[trigger.Signature][]*Binding
	triggers []trigger.Trigger
	bySig    map[trigger.Signature]trigger.Trigger
	forward  map[provider.ID][]*Binding
}

func newSet(tree *schematree.Tree, bindings []*Binding) *Set {
	set := &Set{
		tree:     tree,
		bindings: bindings,
		byID:     make(map[provider.ID]*Binding, len(bindings)),
		direct:   make(map[trigger.Signature][]*Binding),
		bySig:    make(map[trigger.Signature]trigger.Trigger),
		forward:  make(map[provider.ID][]*Binding),
	}
	for _, b := range bindings {
		set.byID[b.ID] = b
		for _, t := range b.Triggers {
			sig := t.Signature()
			if _, seen := set.bySig[sig]; !seen {
				set.bySig[sig] = t
				set.triggers = append(set.triggers, t)
			}
			set.direct[sig] = append(set.direct[sig], b)
		}
	}
	for _, b := range bindings {
		seen := make(map[provider.ID]struct{})
		for _, source := range b.ComputeFrom {
			if _, dup := seen[source]; dup {
				continue
			}
			seen[source] = struct{}{}
			set.forward[source] = append(set.forward[source], b)
		}
	}
	return set
}

// Tree returns the schema the bindings were resolved against.
func (s *Set) Tree() *schematree.Tree {
	return s.tree
}

// Bindings returns every binding in registration order.
func (s *Set) Bindings() []*Binding {
	out := make([]*Binding, len(s.bindings))
	copy(out, s.bindings)
	return out
}

// Binding returns the binding of id.
func (s *Set) Binding(id provider.ID) (*Binding, bool) {
	b, ok := s.byID[id]
	return b, ok
}

// Direct returns the bindings invoked directly by sig, in registration order.
func (s *Set) Direct(sig trigger.Signature) []*Binding {
	return s.direct[sig]
}

// Triggers lists every trigger some provider listens to, in first-declared
// order.
func (s *Set) Triggers() []trigger.Trigger {
	out := make([]trigger.Trigger, len(s.triggers))
	copy(out, s.triggers)
	return out
}

// Trigger returns the declared trigger with the given signature.
func (s *Set) Trigger(sig trigger.Signature) (trigger.Trigger, bool) {
	t, ok := s.bySig[sig]
	return t, ok
}

// Dependencies returns the bindings whose outputs id reads.
func (s *Set) Dependencies(id provider.ID) []*Binding {
	b, ok := s.byID[id]
	if !ok {
		return nil
	}
	var out []*Binding
	for _, dep := range b.ProviderDeps() {
		if producer, ok := s.byID[dep]; ok {
			out = append(out, producer)
		}
	}
	return out
}

// Dependents returns the bindings recomputed whenever id is computed.
func (s *Set) Dependents(id provider.ID) []*Binding {
	return s.forward[id]
}

// Adjacency returns the raw provider to dependency-provider lists.
func (s *Set) Adjacency() map[provider.ID][]provider.ID {
	out := make(map[provider.ID][]provider.ID, len(s.bindings))
	for _, b := range s.bindings {
		out[b.ID] = b.ProviderDeps()
	}
	return out
}
