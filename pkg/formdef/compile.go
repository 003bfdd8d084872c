package formdef

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/schematree"
)

// ErrUnknownForm is returned when a catalog has no form with the requested id.
var ErrUnknownForm = errors.New("formdef: unknown form")

// Compile builds the schema tree and provider registry of the definition.
// Every provider spec is attempted and the failures are joined.
func (d *Definition) Compile(factories *Factories) (*schematree.Tree, *provider.Registry, error) {
	if d == nil {
		return nil, nil, fmt.Errorf("formdef: nil definition")
	}
	tree, err := schematree.New(d.Sections...)
	if err != nil {
		return nil, nil, fmt.Errorf("formdef: form %q: %w", d.ID, err)
	}

	reg := provider.NewRegistry()
	var errs []error
	for idx, spec := range d.Providers {
		if err := register(reg, factories, spec); err != nil {
			errs = append(errs, fmt.Errorf("formdef: form %q provider %d: %w", d.ID, idx, err))
		}
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return tree, reg, nil
}

func register(reg *provider.Registry, factories *Factories, spec ProviderSpec) error {
	p, err := factories.Build(spec)
	if err != nil {
		return err
	}

	var opts []provider.EntryOption
	if spec.ID != "" {
		opts = append(opts, provider.WithID(provider.ID(spec.ID)))
	}

	if spec.Target == "" {
		if spec.ID == "" {
			return fmt.Errorf("a provider without target needs an id")
		}
		if spec.Option != "" {
			return fmt.Errorf("option %q needs a target", spec.Option)
		}
		reg.State(provider.ID(spec.ID), p)
		return nil
	}

	loc, err := location.Parse(spec.Target)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if spec.Option != "" {
		reg.UIState(loc, spec.Option, p, opts...)
		return nil
	}
	reg.Value(loc, p, opts...)
	return nil
}

// Engine compiles the form with the given id into an engine.
func (c *Catalog) Engine(id string, factories *Factories, options ...engine.Option) (*engine.Engine, error) {
	def, ok := c.Definition(id)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownForm, id)
	}
	tree, reg, err := def.Compile(factories)
	if err != nil {
		return nil, err
	}
	return engine.New(tree, reg, options...)
}

// CompileFunc adapts the catalog for engine.NewPool.
func (c *Catalog) CompileFunc(factories *Factories, options ...engine.Option) engine.CompileFunc {
	return func(_ context.Context, id string) (*engine.Engine, error) {
		return c.Engine(id, factories, options...)
	}
}
