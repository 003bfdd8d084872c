package provider

import (
	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

// Inputs exposes resolved dependencies and invocation context to Compute.
type Inputs interface {
	// Value returns a single-valued (or reduced) dependency. Array reads
	// return nil here; use Values.
	Value(h Handle) any
	// Values returns an array dependency's per-element values. Single-valued
	// reads are returned as a one-element list.
	Values(h Handle) []location.IndexedValue
	// Index is the element combination the provider is evaluated for.
	Index() location.Index
	// Trigger is the event being handled.
	Trigger() trigger.Trigger
	// Context is the ambient data supplied by the host, such as the upstream
	// data shape when the dialog opens.
	Context() any
	// Session is the dialog handle owning cancellable work. It may be nil.
	Session() *session.Session
}
