package binding_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/binding"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

func declareOnly(fn provider.DeclareFunc) provider.Provider {
	return provider.New(fn, nil)
}

func TestResolveBuildsBindings(t *testing.T) {
	tree := testsupport.RulesTree(t)
	mode := testsupport.Loc(t, "model.mode")
	name := testsupport.Loc(t, "model.rules[].name")
	enabled := testsupport.Loc(t, "model.rules[].enabled")

	reg := provider.NewRegistry()
	label := reg.State("label", declareOnly(func(r provider.Recorder) error {
		r.ComputeOnValueChange(mode)
		return nil
	}))
	nameID := reg.Value(name, declareOnly(func(r provider.Recorder) error {
		r.ComputeFrom(label)
		r.Read(provider.Field(enabled))
		return nil
	}))
	hidden := reg.UIState(mode, "hidden", declareOnly(func(r provider.Recorder) error {
		r.On(trigger.BeforeOpen())
		r.Read(provider.Field(enabled), provider.Reduce(provider.AnyTrue))
		return nil
	}))

	set, err := binding.Resolve(context.Background(), tree, reg)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if nameID != "value:model.rules[].name" {
		t.Fatalf("unexpected generated id %q", nameID)
	}
	if hidden != "ui:model.mode#hidden" {
		t.Fatalf("unexpected generated id %q", hidden)
	}

	b, ok := set.Binding(nameID)
	if !ok {
		t.Fatalf("expected binding %q", nameID)
	}
	if b.Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", b.Depth())
	}
	if got := b.ProviderDeps(); !cmp.Equal(got, []provider.ID{label}) {
		t.Fatalf("unexpected provider deps %v", got)
	}
	if b.Deps[1].Kind != binding.EdgeValue || b.Deps[1].Shared != 1 {
		t.Fatalf("expected shared value edge, got %+v", b.Deps[1])
	}

	h, _ := set.Binding(hidden)
	if h.Deps[0].Kind != binding.EdgeArray || h.Deps[0].Shared != 0 {
		t.Fatalf("expected array edge for outer reader, got %+v", h.Deps[0])
	}

	var sigs []trigger.Signature
	for _, tr := range set.Triggers() {
		sigs = append(sigs, tr.Signature())
	}
	want := []trigger.Signature{"value:model.mode", "id:before-open-dialog"}
	if diff := cmp.Diff(want, sigs); diff != "" {
		t.Fatalf("triggers mismatch (-want +got):\n%s", diff)
	}

	dependents := set.Dependents(label)
	if len(dependents) != 1 || dependents[0].ID != nameID {
		t.Fatalf("expected %q to be computed from %q, got %v", nameID, label, dependents)
	}
	if got := set.Adjacency()[nameID]; !cmp.Equal(got, []provider.ID{label}) {
		t.Fatalf("unexpected adjacency %v", got)
	}
}

func TestResolveDeclaresOnce(t *testing.T) {
	tree := testsupport.RulesTree(t)
	calls := 0
	reg := provider.NewRegistry()
	reg.Value(testsupport.Loc(t, "model.status"), declareOnly(func(r provider.Recorder) error {
		calls++
		r.On(trigger.BeforeOpen())
		return nil
	}))

	if _, err := binding.Resolve(context.Background(), tree, reg); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected Declare to run once, ran %d times", calls)
	}
}

func TestResolveReportsEveryConfigurationError(t *testing.T) {
	tree := testsupport.RulesTree(t)
	status := testsupport.Loc(t, "model.status")

	reg := provider.NewRegistry()
	reg.Value(testsupport.Loc(t, "model.missing"), declareOnly(func(r provider.Recorder) error { return nil }))
	reg.Value(status, declareOnly(func(r provider.Recorder) error {
		r.Read(provider.Output("ghost"))
		return nil
	}))
	reg.Value(status, declareOnly(func(r provider.Recorder) error { return nil }), provider.WithID("second"))
	reg.Value(testsupport.Loc(t, "model.rules"), declareOnly(func(r provider.Recorder) error { return nil }))
	reg.UIState(status, "hidden", declareOnly(func(r provider.Recorder) error {
		r.Read(provider.Field(testsupport.Loc(t, "model.rules[].enabled")))
		return nil
	}))
	reg.State("boom", declareOnly(func(r provider.Recorder) error {
		return errors.New("boom")
	}))
	reg.State("scoped", declareOnly(func(r provider.Recorder) error {
		r.Scope(testsupport.Loc(t, "model.mode"))
		r.On(trigger.Value(testsupport.Loc(t, "model.nowhere")))
		return nil
	}))

	_, err := binding.Resolve(context.Background(), tree, reg)
	if err == nil {
		t.Fatalf("expected configuration errors")
	}
	if !errors.Is(err, binding.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	var cfg *binding.ConfigError
	if !errors.As(err, &cfg) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}

	msg := err.Error()
	for _, fragment := range []string{
		"target model.missing does not resolve",
		`dependency provider "ghost" is not registered`,
		`already supplied by "value:model.status"`,
		"value target model.rules is not a leaf (array)",
		"read it as an array or supply a reducer",
		"declare failed: boom",
		"scope model.mode is not an array (leaf)",
		"value trigger scope model.nowhere does not resolve",
	} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected error to mention %q, got:\n%s", fragment, msg)
		}
	}
}

func TestResolveRejectsDuplicateIDs(t *testing.T) {
	tree := testsupport.RulesTree(t)
	reg := provider.NewRegistry()
	reg.State("same", declareOnly(nil))
	reg.State("same", declareOnly(nil))

	_, err := binding.Resolve(context.Background(), tree, reg)
	if err == nil || !strings.Contains(err.Error(), "duplicate provider id") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestResolveScopesUntargetedProvider(t *testing.T) {
	tree := testsupport.RulesTree(t)
	reg := provider.NewRegistry()
	id := reg.State("per-rule", declareOnly(func(r provider.Recorder) error {
		r.Scope(testsupport.Loc(t, "model.rules"))
		r.Read(provider.Field(testsupport.Loc(t, "model.rules[].name")))
		return nil
	}))

	set, err := binding.Resolve(context.Background(), tree, reg)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	b, _ := set.Binding(id)
	if b.Depth() != 1 {
		t.Fatalf("expected scoped provider depth 1, got %d", b.Depth())
	}
	if b.Deps[0].Kind != binding.EdgeValue {
		t.Fatalf("expected value edge inside scope, got %s", b.Deps[0].Kind)
	}
}
