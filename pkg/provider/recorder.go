package provider

import (
	"fmt"

	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

// Handle identifies one declared dependency of a provider.
type Handle int

// RefKind distinguishes what a Ref points at.
type RefKind int

const (
	// RefField reads the current value of a form field.
	RefField RefKind = iota
	// RefOutput reads the output of another provider computed in the same
	// invocation.
	RefOutput
)

// Ref is a dependency reference.
type Ref struct {
	Kind     RefKind
	Location location.Location
	Provider ID
}

// Field references the current value of the node at loc.
func Field(loc location.Location) Ref {
	return Ref{Kind: RefField, Location: loc}
}

// Output references the output of the provider with the given id.
func Output(id ID) Ref {
	return Ref{Kind: RefOutput, Provider: id}
}

func (r Ref) String() string {
	switch r.Kind {
	case RefField:
		return "field " + r.Location.String()
	case RefOutput:
		return "provider " + string(r.Provider)
	default:
		return fmt.Sprintf("ref(%d)", r.Kind)
	}
}

// ReadMode states how a dependency is read.
type ReadMode int

const (
	// ReadValue reads a single current value.
	ReadValue ReadMode = iota
	// ReadArray reads every element value of the repeated sections the
	// dependency sits in beyond those shared with the reader.
	ReadArray
)

// Read is the recorded form of one dependency.
type Read struct {
	Ref     Ref
	Mode    ReadMode
	Reducer Reducer
}

// ReadOption adjusts how a dependency is read.
type ReadOption func(*Read)

// AsArray reads the dependency as the list of its per-element values.
func AsArray() ReadOption {
	return func(r *Read) { r.Mode = ReadArray }
}

// Reduce folds the per-element values of a dependency nested outside the
// reader's element into one value.
func Reduce(reducer Reducer) ReadOption {
	return func(r *Read) {
		r.Mode = ReadValue
		r.Reducer = reducer
	}
}

// Recorder collects a provider's declaration.
type Recorder interface {
	// On registers a trigger that invokes the provider directly.
	On(t trigger.Trigger)
	// Read declares a dependency and returns the handle used to fetch it.
	Read(ref Ref, opts ...ReadOption) Handle
	// ComputeOnValueChange reads the field at loc and recomputes whenever it
	// changes.
	ComputeOnValueChange(loc location.Location, opts ...ReadOption) Handle
	// ComputeFrom reads another provider's output and recomputes whenever that
	// provider is computed.
	ComputeFrom(id ID, opts ...ReadOption) Handle
	// Scope evaluates an untargeted provider once per element of the array at
	// loc. Targeted providers take their scope from the target field.
	Scope(loc location.Location)
}
