package invoke

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formflow/internal/ctxlog"
	"github.com/goliatone/go-formflow/pkg/binding"
	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/plan"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/trigger"
	"github.com/goliatone/go-formflow/pkg/updates"
)

// Invocation is one trigger event.
type Invocation struct {
	Trigger trigger.Trigger
	// Indices locate the element the event originated in, outermost first.
	Indices location.Index
	Lookup  Lookup
	// Context is ambient host data handed to every provider.
	Context any
	// Session owns cancellable work started by providers. Optional.
	Session *session.Session
}

// PlanSource supplies execution plans; *plan.Cache implements it.
type PlanSource interface {
	Get(ctx context.Context, sig trigger.Signature) (*plan.Plan, bool, error)
}

// Handler executes invocations. It holds no per-invocation state and is safe
// for concurrent use.
type Handler struct {
	plans   PlanSource
	set     *binding.Set
	aggOpts []updates.Option
}

// NewHandler builds a handler over the bindings in set and the plans of
// source.
func NewHandler(set *binding.Set, source PlanSource, opts ...updates.Option) *Handler {
	return &Handler{plans: source, set: set, aggOpts: opts}
}

// Invoke runs the plan of inv.Trigger. A trigger nobody listens to yields an
// empty result. Cancelled providers are skipped together with their
// dependents; any other provider error aborts with a *FaultError.
func (h *Handler) Invoke(ctx context.Context, inv Invocation) (updates.Result, error) {
	if inv.Trigger == nil {
		return updates.Result{}, errors.New("invoke: trigger is required")
	}
	sig := inv.Trigger.Signature()
	logger := ctxlog.FromContext(ctx).With("trigger", sig)

	p, ok, err := h.plans.Get(ctx, sig)
	if err != nil {
		return updates.Result{}, err
	}
	if !ok || p.Empty() {
		logger.Debug("no providers for trigger")
		return updates.Result{}, nil
	}
	if inv.Lookup == nil {
		return updates.Result{}, errors.New("invoke: lookup is required")
	}

	r := &run{
		ctx:     ctx,
		inv:     inv,
		set:     h.set,
		logger:  logger,
		fields:  make(map[string]any),
		lengths: make(map[string]int),
		outputs: make(map[string]outcome),
	}
	agg := updates.NewAggregator(h.aggOpts...)

	for _, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return updates.Result{}, err
		}
		b := step.Binding
		combos, err := r.eager(b)
		if err != nil {
			return updates.Result{}, err
		}
		for _, idx := range combos {
			out, err := r.output(b, idx)
			if err != nil {
				return updates.Result{}, err
			}
			if out.skipped {
				continue
			}
			agg.Add(b.Target, location.IndexedValue{Index: idx, Value: out.value})
		}
	}
	if err := ctx.Err(); err != nil {
		return updates.Result{}, err
	}

	result := agg.Result()
	logger.Debug("trigger invoked",
		slog.Int("steps", len(p.Steps)),
		slog.Int("values", len(result.Values)),
		slog.Int("uiStates", len(result.UIStates)),
	)
	return result, nil
}

type outcome struct {
	value   any
	skipped bool
}

type run struct {
	ctx     context.Context
	inv     Invocation
	set     *binding.Set
	logger  *slog.Logger
	fields  map[string]any
	lengths map[string]int
	outputs map[string]outcome
}

// pinned returns how many leading index entries of the trigger fix the
// element combination of b.
func (r *run) pinned(b *binding.Binding) int {
	limit := len(r.inv.Indices)
	var shared int
	switch typed := r.inv.Trigger.(type) {
	case trigger.ValueTrigger:
		shared = location.SharedArrays(typed.Scope, b.Origin)
	default:
		shared = b.Depth()
	}
	if shared < limit {
		return shared
	}
	return limit
}

func (r *run) eager(b *binding.Binding) ([]location.Index, error) {
	base := r.inv.Indices.Prefix(r.pinned(b))
	combos, err := r.combinations(b.Origin, base)
	if err != nil {
		return nil, &FaultError{Provider: b.ID, Index: base, Err: err}
	}
	return combos, nil
}

// combinations enumerates every element combination of loc's arrays that
// starts with base.
func (r *run) combinations(loc location.Location, base location.Index) ([]location.Index, error) {
	arrays := loc.Arrays()
	combos := []location.Index{base.Clone()}
	for level := len(base); level < len(arrays); level++ {
		var next []location.Index
		for _, combo := range combos {
			n, err := r.length(arrays[level], combo)
			if err != nil {
				return nil, err
			}
			for i := 0; i < n; i++ {
				next = append(next, combo.Append(i))
			}
		}
		combos = next
	}
	return combos, nil
}

func (r *run) length(array location.Location, idx location.Index) (int, error) {
	key := array.Key() + "@" + idx.Key()
	if n, ok := r.lengths[key]; ok {
		return n, nil
	}
	n, err := r.inv.Lookup.Len(array, idx)
	if err != nil {
		return 0, fmt.Errorf("length of %s at %s: %w", array, idx, err)
	}
	if n < 0 {
		n = 0
	}
	r.lengths[key] = n
	return n, nil
}

func (r *run) field(loc location.Location, idx location.Index) (any, error) {
	key := loc.Key() + "@" + idx.Key()
	if value, ok := r.fields[key]; ok {
		return value, nil
	}
	value, err := r.inv.Lookup.Value(loc, idx)
	if err != nil {
		return nil, fmt.Errorf("read %s at %s: %w", loc, idx, err)
	}
	r.fields[key] = value
	return value, nil
}

// output computes b at idx once per invocation.
func (r *run) output(b *binding.Binding, idx location.Index) (outcome, error) {
	key := string(b.ID) + "@" + idx.Key()
	if out, ok := r.outputs[key]; ok {
		return out, nil
	}

	in := &inputs{
		values:  make([]any, len(b.Deps)),
		lists:   make([][]location.IndexedValue, len(b.Deps)),
		index:   idx,
		trigger: r.inv.Trigger,
		context: r.inv.Context,
		session: r.inv.Session,
	}
	for _, dep := range b.Deps {
		ok, err := r.resolve(b, idx, dep, in)
		if err != nil {
			return outcome{}, err
		}
		if !ok {
			r.logger.Debug("provider skipped, dependency cancelled",
				"provider", b.ID, "index", idx.String(), "dependency", dep.Ref.String())
			return r.remember(key, outcome{skipped: true}), nil
		}
	}

	value, err := b.Provider.Compute(r.ctx, in)
	if err != nil {
		if provider.IsCancelled(err) {
			if ctxErr := r.ctx.Err(); ctxErr != nil {
				return outcome{}, ctxErr
			}
			r.logger.Debug("provider cancelled", "provider", b.ID, "index", idx.String())
			return r.remember(key, outcome{skipped: true}), nil
		}
		return outcome{}, &FaultError{Provider: b.ID, Index: idx.Clone(), Err: err}
	}
	return r.remember(key, outcome{value: value}), nil
}

func (r *run) remember(key string, out outcome) outcome {
	r.outputs[key] = out
	return out
}

// resolve fills in the dependency's slot. It reports false when a provider
// output the dependency needs was cancelled.
func (r *run) resolve(b *binding.Binding, idx location.Index, dep binding.Dependency, in *inputs) (bool, error) {
	var targets []location.Index
	if dep.Kind == binding.EdgeArray {
		combos, err := r.combinations(dep.Location, idx.Prefix(dep.Shared))
		if err != nil {
			return false, &FaultError{Provider: b.ID, Index: idx.Clone(), Err: err}
		}
		targets = combos
	} else {
		targets = []location.Index{idx.Prefix(dep.Depth())}
	}

	list := make([]location.IndexedValue, 0, len(targets))
	for _, target := range targets {
		value, ok, err := r.dependencyValue(b, idx, dep, target)
		if err != nil || !ok {
			return ok, err
		}
		list = append(list, location.IndexedValue{Index: target, Value: value})
	}
	in.lists[dep.Handle] = list

	switch {
	case dep.Reducer != nil:
		reduced, err := dep.Reducer(list)
		if err != nil {
			return false, &FaultError{Provider: b.ID, Index: idx.Clone(), Err: fmt.Errorf("reduce %s: %w", dep.Ref, err)}
		}
		in.values[dep.Handle] = reduced
	case dep.Mode == provider.ReadValue && len(list) == 1:
		in.values[dep.Handle] = list[0].Value
	}
	return true, nil
}

func (r *run) dependencyValue(b *binding.Binding, idx location.Index, dep binding.Dependency, target location.Index) (any, bool, error) {
	if dep.Ref.Kind == provider.RefField {
		value, err := r.field(dep.Location, target)
		if err != nil {
			return nil, false, &FaultError{Provider: b.ID, Index: idx.Clone(), Err: err}
		}
		return value, true, nil
	}

	producer, ok := r.set.Binding(dep.Ref.Provider)
	if !ok {
		return nil, false, &FaultError{Provider: b.ID, Index: idx.Clone(), Err: fmt.Errorf("unknown provider %q", dep.Ref.Provider)}
	}
	out, err := r.output(producer, target)
	if err != nil {
		return nil, false, err
	}
	if out.skipped {
		return nil, false, nil
	}
	return out.value, true, nil
}
