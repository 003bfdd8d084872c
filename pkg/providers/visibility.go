package providers

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/rules"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

// VisibilityOption customises Visibility.
type VisibilityOption func(*visibility)

// Hide inverts the output so the provider can supply a `hidden` option.
func Hide() VisibilityOption {
	return func(v *visibility) { v.negate = true }
}

// Aggregate sets the reducer applied to identifiers repeated over elements
// the target does not share. The default is provider.AnyTrue.
func Aggregate(reducer provider.Reducer) VisibilityOption {
	return func(v *visibility) {
		if reducer != nil {
			v.reducer = reducer
		}
	}
}

type visibility struct {
	rule    *rules.Rule
	negate  bool
	reducer provider.Reducer
	handles map[string]provider.Handle
}

// Visibility evaluates rule over the fields it names. It recomputes when any
// of them changes and when the dialog opens.
func Visibility(rule *rules.Rule, opts ...VisibilityOption) provider.Provider {
	v := &visibility{rule: rule, reducer: provider.AnyTrue}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

func (v *visibility) Declare(r provider.Recorder) error {
	if v.rule == nil {
		return fmt.Errorf("providers: visibility rule is required")
	}
	r.On(trigger.BeforeOpen())
	v.handles = make(map[string]provider.Handle)
	for _, name := range v.rule.Identifiers() {
		loc, err := location.Parse(name)
		if err != nil {
			return fmt.Errorf("providers: rule %q: %w", v.rule, err)
		}
		v.handles[name] = r.ComputeOnValueChange(loc, provider.Reduce(single(v.reducer)))
	}
	return nil
}

func (v *visibility) Compute(_ context.Context, in provider.Inputs) (any, error) {
	values := make(map[string]any, len(v.handles))
	for name, handle := range v.handles {
		values[name] = in.Value(handle)
	}
	ok, err := v.rule.Eval(values)
	if err != nil {
		return nil, err
	}
	return ok != v.negate, nil
}

// single passes a lone element through untouched and folds larger sets with
// reducer.
func single(reducer provider.Reducer) provider.Reducer {
	return func(values []location.IndexedValue) (any, error) {
		if len(values) == 1 {
			return values[0].Value, nil
		}
		return reducer(values)
	}
}
