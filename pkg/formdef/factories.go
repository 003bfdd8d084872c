package formdef

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/providers"
	"github.com/goliatone/go-formflow/pkg/rules"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

// Built-in provider kinds.
const (
	KindConstant       = "constant"
	KindCopy           = "copy"
	KindCount          = "count"
	KindAny            = "any"
	KindAll            = "all"
	KindChoices        = "choices"
	KindContextChoices = "contextChoices"
	KindVisibility     = "visibility"
	KindCancel         = "cancel"
)

// Factory builds a provider from its spec. triggers holds the parsed `on`
// list.
type Factory func(spec ProviderSpec, triggers []trigger.Trigger) (provider.Provider, error)

// Factories maps provider kinds to constructors.
type Factories struct {
	mu     sync.RWMutex
	byKind map[string]Factory
}

// NewFactories returns a registry with the built-in kinds registered.
func NewFactories() *Factories {
	f := &Factories{byKind: make(map[string]Factory)}
	f.registerBuiltins()
	return f
}

// Register adds or replaces the factory for kind. Empty kinds and nil
// factories are ignored.
func (f *Factories) Register(kind string, factory Factory) {
	if f == nil || factory == nil {
		return
	}
	trimmed := strings.TrimSpace(kind)
	if trimmed == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byKind == nil {
		f.byKind = make(map[string]Factory)
	}
	f.byKind[trimmed] = factory
}

// Kinds lists the registered kinds in sorted order.
func (f *Factories) Kinds() []string {
	if f == nil {
		return nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	kinds := make([]string, 0, len(f.byKind))
	for kind := range f.byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Build parses the spec triggers and runs the factory registered for its
// kind.
func (f *Factories) Build(spec ProviderSpec) (provider.Provider, error) {
	if f == nil {
		return nil, fmt.Errorf("formdef: no factories configured")
	}
	f.mu.RLock()
	factory, ok := f.byKind[spec.Kind]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("formdef: unknown provider kind %q", spec.Kind)
	}

	triggers := make([]trigger.Trigger, 0, len(spec.On))
	for _, raw := range spec.On {
		t, err := trigger.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("formdef: provider kind %q: %w", spec.Kind, err)
		}
		triggers = append(triggers, t)
	}

	p, err := factory(spec, triggers)
	if err != nil {
		return nil, fmt.Errorf("formdef: provider kind %q: %w", spec.Kind, err)
	}
	return p, nil
}

func (f *Factories) registerBuiltins() {
	f.Register(KindConstant, func(spec ProviderSpec, triggers []trigger.Trigger) (provider.Provider, error) {
		value, ok := spec.Params["value"]
		if !ok {
			return nil, fmt.Errorf("param %q is required", "value")
		}
		return providers.Constant(value, triggers...), nil
	})
	f.Register(KindCopy, fieldFactory("source", providers.Copy))
	f.Register(KindCount, fieldFactory("array", providers.Count))
	f.Register(KindAny, fieldFactory("field", providers.Any))
	f.Register(KindAll, fieldFactory("field", providers.All))
	f.Register(KindChoices, func(spec ProviderSpec, triggers []trigger.Trigger) (provider.Provider, error) {
		source, err := locationParam(spec, "source")
		if err != nil {
			return nil, err
		}
		p := providers.Choices(source, triggers...)
		if boolParam(spec, "sorted") {
			p = providers.SortedChoices(p)
		}
		return p, nil
	})
	f.Register(KindContextChoices, func(spec ProviderSpec, triggers []trigger.Trigger) (provider.Provider, error) {
		key, err := stringParam(spec, "key")
		if err != nil {
			return nil, err
		}
		return withTriggers(providers.ContextChoices(key), triggers), nil
	})
	f.Register(KindVisibility, func(spec ProviderSpec, triggers []trigger.Trigger) (provider.Provider, error) {
		source, err := stringParam(spec, "rule")
		if err != nil {
			return nil, err
		}
		rule, err := rules.Compile(source)
		if err != nil {
			return nil, err
		}
		var opts []providers.VisibilityOption
		if boolParam(spec, "hide") {
			opts = append(opts, providers.Hide())
		}
		if raw, ok := spec.Params["aggregate"]; ok {
			reducer, err := reducerByName(fmt.Sprint(raw))
			if err != nil {
				return nil, err
			}
			opts = append(opts, providers.Aggregate(reducer))
		}
		return withTriggers(providers.Visibility(rule, opts...), triggers), nil
	})
	f.Register(KindCancel, func(spec ProviderSpec, triggers []trigger.Trigger) (provider.Provider, error) {
		button, err := stringParam(spec, "button")
		if err != nil {
			return nil, err
		}
		if err := trigger.CheckButton(button); err != nil {
			return nil, err
		}
		return withTriggers(providers.CancelButton(button, spec.Params["result"]), triggers), nil
	})
}

func fieldFactory(param string, build func(location.Location, ...trigger.Trigger) provider.Provider) Factory {
	return func(spec ProviderSpec, triggers []trigger.Trigger) (provider.Provider, error) {
		loc, err := locationParam(spec, param)
		if err != nil {
			return nil, err
		}
		return build(loc, triggers...), nil
	}
}

// withTriggers adds extra triggers in front of the provider's own declaration.
func withTriggers(p provider.Provider, triggers []trigger.Trigger) provider.Provider {
	if len(triggers) == 0 {
		return p
	}
	return provider.New(func(r provider.Recorder) error {
		for _, t := range triggers {
			r.On(t)
		}
		return p.Declare(r)
	}, p.Compute)
}

func reducerByName(name string) (provider.Reducer, error) {
	switch name {
	case "any":
		return provider.AnyTrue, nil
	case "all":
		return provider.AllTrue, nil
	case "first":
		return provider.First, nil
	default:
		return nil, fmt.Errorf("unknown aggregate %q", name)
	}
}

func stringParam(spec ProviderSpec, name string) (string, error) {
	raw, ok := spec.Params[name]
	if !ok {
		return "", fmt.Errorf("param %q is required", name)
	}
	value, ok := raw.(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("param %q must be a non-empty string", name)
	}
	return value, nil
}

func locationParam(spec ProviderSpec, name string) (location.Location, error) {
	raw, err := stringParam(spec, name)
	if err != nil {
		return location.Location{}, err
	}
	loc, err := location.Parse(raw)
	if err != nil {
		return location.Location{}, fmt.Errorf("param %q: %w", name, err)
	}
	return loc, nil
}

func boolParam(spec ProviderSpec, name string) bool {
	value, _ := spec.Params[name].(bool)
	return value
}
