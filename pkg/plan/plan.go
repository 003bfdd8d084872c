package plan

import (
	"sort"

	"github.com/goliatone/go-formflow/pkg/binding"
	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

// Step is one provider of a plan with the field Locations it reads.
type Step struct {
	Binding      *binding.Binding
	Dependencies []location.Location
}

// Plan is the immutable execution order for one trigger signature.
type Plan struct {
	Trigger trigger.Signature
	Steps   []Step
}

// Empty reports whether the plan runs nothing.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Steps) == 0
}

// IDs returns the provider order.
func (p *Plan) IDs() []provider.ID {
	if p == nil {
		return nil
	}
	out := make([]provider.ID, len(p.Steps))
	for idx, step := range p.Steps {
		out[idx] = step.Binding.ID
	}
	return out
}

// Fields returns every field Location read anywhere in the plan, first-read
// order, without duplicates.
func (p *Plan) Fields() []location.Location {
	if p == nil {
		return nil
	}
	var out []location.Location
	seen := make(map[string]struct{})
	for _, step := range p.Steps {
		for _, loc := range step.Dependencies {
			key := loc.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, loc)
		}
	}
	return out
}

const (
	unvisited = iota
	visiting
	done
)

// Build computes the plan for sig: the providers bound directly to it, every
// provider they read (transitively), and every provider computed from one of
// those, sorted so dependencies run first. Ties follow registration order.
func Build(set *binding.Set, sig trigger.Signature) (*Plan, error) {
	included := closure(set, sig)
	if len(included) == 0 {
		return &Plan{Trigger: sig}, nil
	}

	nodes := make([]*binding.Binding, 0, len(included))
	for _, b := range included {
		nodes = append(nodes, b)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Order < nodes[j].Order })

	state := make(map[provider.ID]int, len(nodes))
	var path []provider.ID
	steps := make([]Step, 0, len(nodes))

	var visit func(b *binding.Binding) error
	visit = func(b *binding.Binding) error {
		switch state[b.ID] {
		case done:
			return nil
		case visiting:
			return &CycleError{Trigger: sig, Chain: cycleChain(path, b.ID)}
		}
		state[b.ID] = visiting
		path = append(path, b.ID)
		for _, dep := range set.Dependencies(b.ID) {
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[b.ID] = done
		steps = append(steps, Step{Binding: b, Dependencies: b.FieldDeps()})
		return nil
	}

	for _, b := range nodes {
		if err := visit(b); err != nil {
			return nil, err
		}
	}
	return &Plan{Trigger: sig, Steps: steps}, nil
}

func closure(set *binding.Set, sig trigger.Signature) map[provider.ID]*binding.Binding {
	included := make(map[provider.ID]*binding.Binding)
	queue := append([]*binding.Binding(nil), set.Direct(sig)...)
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		if _, ok := included[b.ID]; ok {
			continue
		}
		included[b.ID] = b
		queue = append(queue, set.Dependencies(b.ID)...)
		queue = append(queue, set.Dependents(b.ID)...)
	}
	return included
}

func cycleChain(path []provider.ID, repeated provider.ID) []provider.ID {
	start := 0
	for idx, id := range path {
		if id == repeated {
			start = idx
			break
		}
	}
	chain := append([]provider.ID(nil), path[start:]...)
	return append(chain, repeated)
}
