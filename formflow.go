// Package formflow wires the reactive form engine for callers that want a
// single import: load definitions, compile a form, fire triggers.
package formflow

import (
	"context"
	"os"

	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/formdef"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/schematree"
	"github.com/goliatone/go-formflow/pkg/settings"
	"github.com/goliatone/go-formflow/pkg/updates"
)

// Engine aliases engine.Engine.
type Engine = engine.Engine

// Registry aliases provider.Registry, the list of providers of one form.
type Registry = provider.Registry

// Tree aliases schematree.Tree.
type Tree = schematree.Tree

// Result aliases updates.Result, the outcome of one trigger.
type Result = updates.Result

// Settings aliases settings.Snapshot.
type Settings = settings.Snapshot

// NewEngine resolves the registry against the tree.
func NewEngine(tree *Tree, reg *Registry, options ...engine.Option) (*Engine, error) {
	return engine.New(tree, reg, options...)
}

// LoadCatalog reads every form definition below dir.
func LoadCatalog(ctx context.Context, dir string) (*formdef.Catalog, error) {
	return formdef.LoadFS(ctx, os.DirFS(dir))
}

// NewPool returns an engine pool compiling forms from catalog with the
// built-in provider kinds.
func NewPool(catalog *formdef.Catalog, size int, options ...engine.Option) (*engine.Pool, error) {
	return engine.NewPool(size, catalog.CompileFunc(formdef.NewFactories(), options...))
}
