package invoke

import (
	"errors"

	"github.com/goliatone/go-formflow/pkg/location"
)

// Lookup reads the current form state.
type Lookup interface {
	// Value returns the value of the field at loc for the element combination
	// idx, whose length equals the depth of loc.
	Value(loc location.Location, idx location.Index) (any, error)
	// Len returns the element count of the array at loc for the element
	// combination idx of its enclosing arrays.
	Len(array location.Location, idx location.Index) (int, error)
}

// LookupFuncs adapts plain functions into a Lookup. A missing LenFn reports
// empty arrays.
type LookupFuncs struct {
	ValueFn func(loc location.Location, idx location.Index) (any, error)
	LenFn   func(array location.Location, idx location.Index) (int, error)
}

var errNoValueFn = errors.New("invoke: lookup has no value function")

// Value implements Lookup.
func (f LookupFuncs) Value(loc location.Location, idx location.Index) (any, error) {
	if f.ValueFn == nil {
		return nil, errNoValueFn
	}
	return f.ValueFn(loc, idx)
}

// Len implements Lookup.
func (f LookupFuncs) Len(array location.Location, idx location.Index) (int, error) {
	if f.LenFn == nil {
		return 0, nil
	}
	return f.LenFn(array, idx)
}
