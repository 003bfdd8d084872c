package binding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/internal/ctxlog"
	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/schematree"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

type pending struct {
	binding *Binding
	decl    *declaration
}

// Resolve runs Declare once for every registered provider, in registration
// order, and validates the recorded references against tree. Every problem
// found is returned, joined, as ConfigError values.
func Resolve(ctx context.Context, tree *schematree.Tree, reg *provider.Registry) (*Set, error) {
	if tree == nil {
		return nil, errors.New("binding: schema tree is required")
	}
	logger := ctxlog.FromContext(ctx)

	var errs []error
	byID := make(map[provider.ID]*Binding)
	valueTargets := make(map[string]provider.ID)
	bindings := make([]*Binding, 0, reg.Len())
	pendings := make([]pending, 0, reg.Len())

	for order, entry := range reg.Entries() {
		id := entry.ID
		if strings.TrimSpace(string(id)) == "" {
			errs = append(errs, configErr("", "registration %d has an empty provider id", order))
			continue
		}
		if entry.Provider == nil {
			errs = append(errs, configErr(id, "provider is nil"))
			continue
		}
		if _, dup := byID[id]; dup {
			errs = append(errs, configErr(id, "duplicate provider id"))
			continue
		}

		b := &Binding{ID: id, Provider: entry.Provider, Target: entry.Target, Order: order}
		byID[id] = b
		bindings = append(bindings, b)

		if err := checkTarget(tree, b, valueTargets); err != nil {
			errs = append(errs, err)
		}

		decl := &declaration{}
		if err := entry.Provider.Declare(&recorder{decl: decl}); err != nil {
			errs = append(errs, &ConfigError{Provider: id, Reason: "declare failed", Err: err})
			continue
		}
		if err := assignOrigin(tree, b, decl); err != nil {
			errs = append(errs, err)
		}
		pendings = append(pendings, pending{binding: b, decl: decl})
	}

	for _, p := range pendings {
		errs = append(errs, resolveTriggers(tree, p.binding, p.decl)...)
		errs = append(errs, resolveReads(tree, byID, p.binding, p.decl)...)
	}

	if len(errs) > 0 {
		logger.Debug("binding resolution failed", "errors", len(errs))
		return nil, errors.Join(errs...)
	}

	set := newSet(tree, bindings)
	logger.Debug("bindings resolved", "providers", len(bindings), "triggers", len(set.triggers))
	return set, nil
}

func checkTarget(tree *schematree.Tree, b *Binding, valueTargets map[string]provider.ID) error {
	target := b.Target
	switch target.Kind {
	case provider.TargetNone:
		return nil
	case provider.TargetValue, provider.TargetUIState:
	default:
		return configErr(b.ID, "unknown target kind %d", target.Kind)
	}

	node, ok := tree.Resolve(target.Location)
	if !ok {
		return configErr(b.ID, "target %s does not resolve", target.Location)
	}

	if target.Kind == provider.TargetUIState {
		if strings.TrimSpace(target.Option) == "" {
			return configErr(b.ID, "ui state target %s has no option name", target.Location)
		}
		return nil
	}

	if !node.IsLeaf() {
		return configErr(b.ID, "value target %s is not a leaf (%s)", target.Location, node.Kind())
	}
	key := target.Location.Key()
	if other, taken := valueTargets[key]; taken {
		return configErr(b.ID, "value of %s is already supplied by %q", target.Location, other)
	}
	valueTargets[key] = b.ID
	return nil
}

func assignOrigin(tree *schematree.Tree, b *Binding, decl *declaration) error {
	if b.Target.Kind != provider.TargetNone {
		b.Origin = location.New(b.Target.Location.Section, b.Target.Location.Paths...)
		if decl.scope != nil {
			return configErr(b.ID, "scope is only valid for untargeted providers")
		}
		return nil
	}
	if decl.scope == nil {
		return nil
	}
	if decl.scopeCalls > 1 {
		return configErr(b.ID, "scope declared %d times", decl.scopeCalls)
	}
	node, ok := tree.Resolve(*decl.scope)
	if !ok {
		return configErr(b.ID, "scope %s does not resolve", *decl.scope)
	}
	if node.Kind() != schematree.KindArray {
		return configErr(b.ID, "scope %s is not an array (%s)", *decl.scope, node.Kind())
	}
	b.Origin = decl.scope.Element()
	return nil
}

func resolveTriggers(tree *schematree.Tree, b *Binding, decl *declaration) []error {
	var errs []error
	for _, t := range decl.triggers {
		switch typed := t.(type) {
		case trigger.ValueTrigger:
			if _, ok := tree.Resolve(typed.Scope); !ok {
				errs = append(errs, configErr(b.ID, "value trigger scope %s does not resolve", typed.Scope))
				continue
			}
		case trigger.IDTrigger:
			if strings.TrimSpace(typed.ID) == "" {
				errs = append(errs, configErr(b.ID, "trigger has an empty id"))
				continue
			}
		default:
			errs = append(errs, configErr(b.ID, "unsupported trigger %T", t))
			continue
		}
		b.Triggers = append(b.Triggers, t)
	}
	b.ComputeFrom = append(b.ComputeFrom, decl.computeFrom...)
	return errs
}

func resolveReads(tree *schematree.Tree, byID map[provider.ID]*Binding, b *Binding, decl *declaration) []error {
	var errs []error
	b.Deps = make([]Dependency, 0, len(decl.reads))
	for handle, read := range decl.reads {
		dep := Dependency{
			Handle:  provider.Handle(handle),
			Ref:     read.Ref,
			Mode:    read.Mode,
			Reducer: read.Reducer,
		}

		switch read.Ref.Kind {
		case provider.RefField:
			if _, ok := tree.Resolve(read.Ref.Location); !ok {
				errs = append(errs, configErr(b.ID, "dependency field %s does not resolve", read.Ref.Location))
			}
			dep.Location = read.Ref.Location
		case provider.RefOutput:
			producer, ok := byID[read.Ref.Provider]
			if !ok {
				errs = append(errs, configErr(b.ID, "dependency provider %q is not registered", read.Ref.Provider))
			} else {
				dep.Location = producer.Origin
			}
		default:
			errs = append(errs, configErr(b.ID, "unknown dependency reference kind %d", read.Ref.Kind))
		}

		dep.Shared = location.SharedArrays(b.Origin, dep.Location)
		if dep.Location.Depth() > dep.Shared {
			dep.Kind = EdgeArray
			if dep.Mode == provider.ReadValue && dep.Reducer == nil {
				errs = append(errs, configErr(b.ID,
					"%s repeats over %d array level(s) not shared with the reader; read it as an array or supply a reducer",
					read.Ref, dep.Location.Depth()-dep.Shared))
			}
		}
		b.Deps = append(b.Deps, dep)
	}
	return errs
}

// Describe renders a binding for logs and CLI listings.
func Describe(b *Binding) string {
	switch b.Target.Kind {
	case provider.TargetValue:
		return fmt.Sprintf("%s (value of %s)", b.ID, b.Target.Location)
	case provider.TargetUIState:
		return fmt.Sprintf("%s (%s of %s)", b.ID, b.Target.Option, b.Target.Location)
	default:
		return string(b.ID)
	}
}
