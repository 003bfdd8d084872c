package plan_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/pkg/binding"
	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/plan"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

func declare(fn provider.DeclareFunc) provider.Provider {
	return provider.New(fn, nil)
}

func resolve(t *testing.T, reg *provider.Registry) *binding.Set {
	t.Helper()
	set, err := binding.Resolve(context.Background(), testsupport.RulesTree(t), reg)
	require.NoError(t, err)
	return set
}

// mode change -> base -> derived -> late; unrelated only listens to the
// button.
func chainRegistry(t *testing.T) *provider.Registry {
	mode := testsupport.Loc(t, "model.mode")
	reg := provider.NewRegistry()
	reg.State("late", declare(func(r provider.Recorder) error {
		r.ComputeFrom("derived")
		return nil
	}))
	reg.State("derived", declare(func(r provider.Recorder) error {
		r.ComputeFrom("base")
		return nil
	}))
	reg.State("base", declare(func(r provider.Recorder) error {
		r.ComputeOnValueChange(mode)
		return nil
	}))
	reg.State("unrelated", declare(func(r provider.Recorder) error {
		r.On(trigger.Button("refresh"))
		return nil
	}))
	return reg
}

func TestBuildOrdersDependenciesFirst(t *testing.T) {
	set := resolve(t, chainRegistry(t))

	p, err := plan.Build(set, trigger.Value(testsupport.Loc(t, "model.mode")).Signature())
	require.NoError(t, err)
	assert.Equal(t, []provider.ID{"base", "derived", "late"}, p.IDs())
}

func TestBuildIsDeterministic(t *testing.T) {
	set := resolve(t, chainRegistry(t))
	sig := trigger.Value(testsupport.Loc(t, "model.mode")).Signature()

	first, err := plan.Build(set, sig)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := plan.Build(set, sig)
		require.NoError(t, err)
		assert.Equal(t, first.IDs(), again.IDs())
	}
}

func TestBuildExcludesUnrelatedProviders(t *testing.T) {
	set := resolve(t, chainRegistry(t))

	p, err := plan.Build(set, trigger.Button("refresh").Signature())
	require.NoError(t, err)
	assert.Equal(t, []provider.ID{"unrelated"}, p.IDs())

	empty, err := plan.Build(set, trigger.Button("nobody").Signature())
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}

func TestBuildDetectsCycle(t *testing.T) {
	reg := provider.NewRegistry()
	reg.State("a", declare(func(r provider.Recorder) error {
		r.On(trigger.BeforeOpen())
		r.Read(provider.Output("b"))
		return nil
	}))
	reg.State("b", declare(func(r provider.Recorder) error {
		r.Read(provider.Output("a"))
		return nil
	}))
	set := resolve(t, reg)

	_, err := plan.Build(set, trigger.BeforeOpen().Signature())
	require.Error(t, err)
	assert.True(t, errors.Is(err, plan.ErrCycle))

	var cycle *plan.CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, []provider.ID{"a", "b", "a"}, cycle.Chain)
	assert.Contains(t, err.Error(), "a -> b -> a")
}

func TestBuildCollectsFieldDependencies(t *testing.T) {
	name := testsupport.Loc(t, "model.rules[].name")
	mode := testsupport.Loc(t, "model.mode")
	reg := provider.NewRegistry()
	reg.UIState(name, "hidden", declare(func(r provider.Recorder) error {
		r.ComputeOnValueChange(mode)
		r.Read(provider.Field(name))
		return nil
	}))
	set := resolve(t, reg)

	p, err := plan.Build(set, trigger.Value(mode).Signature())
	require.NoError(t, err)
	require.Len(t, p.Steps, 1)
	assert.Equal(t, []string{"model.mode", "model.rules[].name"}, keys(p.Fields()))
}

func TestCacheBuildsOncePerSignature(t *testing.T) {
	set := resolve(t, chainRegistry(t))
	cache := plan.NewCache(set)
	sig := trigger.Value(testsupport.Loc(t, "model.mode")).Signature()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, ok, err := cache.Get(context.Background(), sig)
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Len(t, p.Steps, 3)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cache.Builds())

	_, ok, err := cache.Get(context.Background(), trigger.ID("unknown").Signature())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheWarmReportsCycles(t *testing.T) {
	reg := provider.NewRegistry()
	reg.State("a", declare(func(r provider.Recorder) error {
		r.On(trigger.BeforeOpen())
		r.ComputeFrom("b")
		return nil
	}))
	reg.State("b", declare(func(r provider.Recorder) error {
		r.ComputeFrom("a")
		return nil
	}))
	reg.State("fine", declare(func(r provider.Recorder) error {
		r.On(trigger.AfterOpen())
		return nil
	}))
	cache := plan.NewCache(resolve(t, reg))

	err := cache.Warm(context.Background())
	require.ErrorIs(t, err, plan.ErrCycle)

	_, _, again := cache.Get(context.Background(), trigger.BeforeOpen().Signature())
	require.ErrorIs(t, again, plan.ErrCycle)
	assert.Equal(t, 2, cache.Builds())
}

func keys(locs []location.Location) []string {
	out := make([]string, len(locs))
	for idx, loc := range locs {
		out[idx] = loc.Key()
	}
	return out
}
