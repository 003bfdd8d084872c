package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-formflow/pkg/binding"
	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/plan"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

func readyRegistry(t *testing.T) *provider.Registry {
	reg := provider.NewRegistry()
	reg.UIState(testsupport.Loc(t, "model.status"), "status", provider.New(func(r provider.Recorder) error {
		r.On(trigger.BeforeOpen())
		return nil
	}, func(context.Context, provider.Inputs) (any, error) {
		return "ready", nil
	}))
	return reg
}

func TestEngineBeforeOpenDialog(t *testing.T) {
	e, err := engine.New(testsupport.RulesTree(t), readyRegistry(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := e.Fire(context.Background(), trigger.BeforeOpen(), testsupport.Snapshot(t, `{}`))
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}
	got, ok := result.UIState(testsupport.Loc(t, "model.status"), "status")
	if !ok {
		t.Fatalf("expected status update, got %+v", result)
	}
	testsupport.AssertValues(t, []location.IndexedValue{{Index: location.Index{}, Value: "ready"}}, got)

	if len(e.Triggers()) != 1 {
		t.Fatalf("expected one declared trigger, got %v", e.Triggers())
	}
}

func TestEngineRejectsUnresolvedDependency(t *testing.T) {
	reg := provider.NewRegistry()
	reg.Value(testsupport.Loc(t, "model.status"), provider.New(func(r provider.Recorder) error {
		r.On(trigger.BeforeOpen())
		r.Read(provider.Field(testsupport.Loc(t, "model.nothing")))
		return nil
	}, nil))

	_, err := engine.New(testsupport.RulesTree(t), reg)
	if !errors.Is(err, binding.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func cyclicRegistry() *provider.Registry {
	reg := provider.NewRegistry()
	reg.State("a", provider.New(func(r provider.Recorder) error {
		r.On(trigger.Button("go"))
		r.Read(provider.Output("b"))
		return nil
	}, nil))
	reg.State("b", provider.New(func(r provider.Recorder) error {
		r.Read(provider.Output("a"))
		return nil
	}, nil))
	return reg
}

func TestEngineDetectsCyclesEagerly(t *testing.T) {
	_, err := engine.New(testsupport.RulesTree(t), cyclicRegistry())
	if !errors.Is(err, plan.ErrCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestEngineLazyPlansDeferCycles(t *testing.T) {
	e, err := engine.New(testsupport.RulesTree(t), cyclicRegistry(), engine.WithLazyPlans())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, _, err = e.Plan(context.Background(), trigger.Button("go"))
	var cycle *plan.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected cycle error on first use, got %v", err)
	}
	if fmt.Sprint(cycle.Chain) != "[a b a]" {
		t.Fatalf("unexpected chain %v", cycle.Chain)
	}
}

func TestEngineSanitizesOptions(t *testing.T) {
	status := testsupport.Loc(t, "model.status")
	reg := provider.NewRegistry()
	reg.UIState(status, "message", provider.New(func(r provider.Recorder) error {
		r.On(trigger.AfterOpen())
		return nil
	}, func(context.Context, provider.Inputs) (any, error) {
		return `<i>loaded</i>`, nil
	}))
	e, err := engine.New(testsupport.RulesTree(t), reg, engine.WithSanitizedOptions("message"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := e.Fire(context.Background(), trigger.AfterOpen(), testsupport.Snapshot(t, `{}`))
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}
	got, _ := result.UIState(status, "message")
	if len(got) != 1 || got[0].Value != "loaded" {
		t.Fatalf("expected sanitized message, got %+v", got)
	}
}

func TestEngineFirePassesContextAndIndices(t *testing.T) {
	name := testsupport.Loc(t, "model.rules[].name")
	reg := provider.NewRegistry()
	reg.Value(name, provider.New(func(r provider.Recorder) error {
		r.On(trigger.Button("label"))
		return nil
	}, func(_ context.Context, in provider.Inputs) (any, error) {
		return fmt.Sprintf("%v-%s", in.Context(), in.Index()), nil
	}))
	e, err := engine.New(testsupport.RulesTree(t), reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	snap := testsupport.Snapshot(t, `{"model":{"rules":[{},{}]}}`)
	result, err := e.Fire(context.Background(), trigger.Button("label"), snap,
		engine.WithIndices(1), engine.WithContext("upstream"))
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}
	got, _ := result.Value(name)
	testsupport.AssertValues(t, []location.IndexedValue{{Index: location.Index{1}, Value: "upstream-(1)"}}, got)
}

func TestPoolCompilesOncePerForm(t *testing.T) {
	var compiles atomic.Int32
	pool, err := engine.NewPool(2, func(ctx context.Context, id string) (*engine.Engine, error) {
		compiles.Add(1)
		if id == "broken" {
			return nil, errors.New("no such form")
		}
		return engine.New(testsupport.RulesTree(t), readyRegistry(t))
	})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	var wg sync.WaitGroup
	engines := make([]*engine.Engine, 8)
	for i := range engines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := pool.Get(context.Background(), "status")
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			engines[i] = e
		}(i)
	}
	wg.Wait()

	if compiles.Load() != 1 {
		t.Fatalf("expected a single compilation, got %d", compiles.Load())
	}
	for _, e := range engines[1:] {
		if e != engines[0] {
			t.Fatalf("expected every caller to share one engine")
		}
	}

	if _, err := pool.Get(context.Background(), "broken"); err == nil {
		t.Fatalf("expected compile error")
	}
	if pool.Len() != 1 {
		t.Fatalf("expected failures not to be cached, len=%d", pool.Len())
	}
	if !pool.Evict("status") || pool.Len() != 0 {
		t.Fatalf("expected eviction")
	}
}
