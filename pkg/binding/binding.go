package binding

import (
	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

// EdgeKind distinguishes how a dependency is consumed.
type EdgeKind int

const (
	// EdgeValue reads a single current value at the reader's index.
	EdgeValue EdgeKind = iota
	// EdgeArray reads every element of the repeated sections the dependency
	// lives in beyond those shared with the reader.
	EdgeArray
)

func (k EdgeKind) String() string {
	if k == EdgeArray {
		return "array"
	}
	return "value"
}

// Dependency is one resolved read of a binding.
type Dependency struct {
	Handle  provider.Handle
	Ref     provider.Ref
	Kind    EdgeKind
	Mode    provider.ReadMode
	Reducer provider.Reducer
	// Location is the field read, or the origin of the provider read.
	Location location.Location
	// Shared counts the enclosing arrays the dependency has in common with
	// the reader. Index entries past Shared are aggregated over.
	Shared int
}

// Depth is the array depth of the dependency.
func (d Dependency) Depth() int {
	return d.Location.Depth()
}

// Binding is the resolved declaration of one provider.
type Binding struct {
	ID       provider.ID
	Provider provider.Provider
	Target   provider.Target
	// Origin locates the provider inside the schema: the target field, the
	// element of the array it was scoped to, or the zero Location.
	Origin location.Location
	// Triggers invoke the provider directly, in declaration order.
	Triggers []trigger.Trigger
	// Deps are indexed by handle.
	Deps []Dependency
	// ComputeFrom lists the providers whose computation also recomputes this
	// one.
	ComputeFrom []provider.ID
	// Order is the registration position, used to break ties.
	Order int
}

// Depth is the number of arrays enclosing the binding's origin.
func (b *Binding) Depth() int {
	return b.Origin.Depth()
}

// Arrays lists the enclosing array Locations, outermost first.
func (b *Binding) Arrays() []location.Location {
	return b.Origin.Arrays()
}

// ProviderDeps returns the ids of the providers this binding reads, in
// handle order without duplicates.
func (b *Binding) ProviderDeps() []provider.ID {
	var out []provider.ID
	seen := make(map[provider.ID]struct{})
	for _, dep := range b.Deps {
		if dep.Ref.Kind != provider.RefOutput {
			continue
		}
		if _, ok := seen[dep.Ref.Provider]; ok {
			continue
		}
		seen[dep.Ref.Provider] = struct{}{}
		out = append(out, dep.Ref.Provider)
	}
	return out
}

// FieldDeps returns the field Locations this binding reads, in handle order.
func (b *Binding) FieldDeps() []location.Location {
	var out []location.Location
	for _, dep := range b.Deps {
		if dep.Ref.Kind == provider.RefField {
			out = append(out, dep.Location)
		}
	}
	return out
}
