package providers

import (
	"context"
	"fmt"
	"sort"

	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

type choices struct {
	source   location.Location
	triggers []trigger.Trigger
	handle   provider.Handle
}

// Choices offers the distinct non-empty values of the field at source across
// every element of its repeated sections, in element order.
func Choices(source location.Location, triggers ...trigger.Trigger) provider.Provider {
	return &choices{source: source, triggers: triggers}
}

func (c *choices) Declare(r provider.Recorder) error {
	for _, t := range c.triggers {
		r.On(t)
	}
	c.handle = r.ComputeOnValueChange(c.source, provider.AsArray())
	return nil
}

func (c *choices) Compute(_ context.Context, in provider.Inputs) (any, error) {
	return distinct(location.Values(in.Values(c.handle))), nil
}

type contextChoices struct {
	key string
}

// ContextChoices offers the entries listed under key in the ambient context
// handed over when the dialog opens, such as the upstream column names. The
// context may be a map[string]any or a map[string][]string.
func ContextChoices(key string) provider.Provider {
	return &contextChoices{key: key}
}

func (c *contextChoices) Declare(r provider.Recorder) error {
	r.On(trigger.BeforeOpen())
	return nil
}

func (c *contextChoices) Compute(_ context.Context, in provider.Inputs) (any, error) {
	switch typed := in.Context().(type) {
	case nil:
		return []string{}, nil
	case map[string][]string:
		return distinctStrings(typed[c.key]), nil
	case map[string]any:
		switch entries := typed[c.key].(type) {
		case nil:
			return []string{}, nil
		case []string:
			return distinctStrings(entries), nil
		case []any:
			return distinct(entries), nil
		default:
			return nil, fmt.Errorf("providers: context entry %q is a %T, not a list", c.key, entries)
		}
	default:
		return nil, fmt.Errorf("providers: unsupported dialog context %T", typed)
	}
}

func distinct(values []any) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		if value == nil {
			continue
		}
		text := fmt.Sprint(value)
		if text == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}

func distinctStrings(values []string) []string {
	generic := make([]any, len(values))
	for idx, value := range values {
		generic[idx] = value
	}
	return distinct(generic)
}

// SortedChoices wraps a choices provider and sorts its output.
func SortedChoices(p provider.Provider) provider.Provider {
	return provider.New(p.Declare, func(ctx context.Context, in provider.Inputs) (any, error) {
		value, err := p.Compute(ctx, in)
		if err != nil {
			return nil, err
		}
		list, ok := value.([]string)
		if !ok {
			return value, nil
		}
		sorted := append([]string(nil), list...)
		sort.Strings(sorted)
		return sorted, nil
	})
}
