package providers

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

// Func adapts a pair of functions into a provider.
func Func(declare provider.DeclareFunc, compute provider.ComputeFunc) provider.Provider {
	return provider.New(declare, compute)
}

type constant struct {
	value    any
	triggers []trigger.Trigger
}

// Constant returns value whenever one of triggers fires. Without triggers it
// reacts to the dialog opening.
func Constant(value any, triggers ...trigger.Trigger) provider.Provider {
	if len(triggers) == 0 {
		triggers = []trigger.Trigger{trigger.BeforeOpen()}
	}
	return &constant{value: value, triggers: triggers}
}

func (c *constant) Declare(r provider.Recorder) error {
	for _, t := range c.triggers {
		r.On(t)
	}
	return nil
}

func (c *constant) Compute(context.Context, provider.Inputs) (any, error) {
	return c.value, nil
}

type copyField struct {
	source   location.Location
	triggers []trigger.Trigger
	handle   provider.Handle
}

// Copy mirrors the value of the field at source, recomputing when it changes
// and on the extra triggers.
func Copy(source location.Location, triggers ...trigger.Trigger) provider.Provider {
	return &copyField{source: source, triggers: triggers}
}

func (c *copyField) Declare(r provider.Recorder) error {
	for _, t := range c.triggers {
		r.On(t)
	}
	c.handle = r.ComputeOnValueChange(c.source)
	return nil
}

func (c *copyField) Compute(_ context.Context, in provider.Inputs) (any, error) {
	return in.Value(c.handle), nil
}

type count struct {
	array    location.Location
	triggers []trigger.Trigger
	handle   provider.Handle
}

// Count returns the number of elements of the array at loc. It recomputes
// when the array itself is reported changed.
func Count(array location.Location, triggers ...trigger.Trigger) provider.Provider {
	return &count{array: array, triggers: triggers}
}

func (c *count) Declare(r provider.Recorder) error {
	for _, t := range c.triggers {
		r.On(t)
	}
	c.handle = r.ComputeOnValueChange(c.array)
	return nil
}

func (c *count) Compute(_ context.Context, in provider.Inputs) (any, error) {
	switch typed := in.Value(c.handle).(type) {
	case nil:
		return 0, nil
	case []any:
		return len(typed), nil
	default:
		return nil, fmt.Errorf("providers: %s is a %T, not an array", c.array, typed)
	}
}

type reduceField struct {
	field    location.Location
	reducer  provider.Reducer
	triggers []trigger.Trigger
	handle   provider.Handle
}

// Any is true when the field is true in at least one element of the
// repeated sections it lives in.
func Any(field location.Location, triggers ...trigger.Trigger) provider.Provider {
	return &reduceField{field: field, reducer: provider.AnyTrue, triggers: triggers}
}

// All is true when the field is true in every element.
func All(field location.Location, triggers ...trigger.Trigger) provider.Provider {
	return &reduceField{field: field, reducer: provider.AllTrue, triggers: triggers}
}

func (p *reduceField) Declare(r provider.Recorder) error {
	for _, t := range p.triggers {
		r.On(t)
	}
	p.handle = r.ComputeOnValueChange(p.field, provider.Reduce(p.reducer))
	return nil
}

func (p *reduceField) Compute(_ context.Context, in provider.Inputs) (any, error) {
	return in.Value(p.handle), nil
}
