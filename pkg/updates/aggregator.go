package updates

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
)

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithSanitizedOptions strips markup from string values written to the named
// UI options. Messages shown by the presentation layer are the usual case.
func WithSanitizedOptions(names ...string) Option {
	return func(a *Aggregator) {
		for _, name := range names {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				a.sanitize[trimmed] = struct{}{}
			}
		}
	}
}

// Aggregator collects the outputs of one invocation. It is not safe for
// concurrent use; an invocation runs on a single goroutine.
type Aggregator struct {
	values   []ValueUpdate
	valueIdx map[string]int
	states   []UIStateUpdate
	stateIdx map[string]int
	sanitize map[string]struct{}
}

// NewAggregator returns an empty aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		valueIdx: make(map[string]int),
		stateIdx: make(map[string]int),
		sanitize: make(map[string]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Add routes value into the bucket of target. Outputs of untargeted
// providers are dropped and Add reports false.
func (a *Aggregator) Add(target provider.Target, value location.IndexedValue) bool {
	value.Index = value.Index.Clone()
	switch target.Kind {
	case provider.TargetValue:
		key := target.Location.Key()
		idx, ok := a.valueIdx[key]
		if !ok {
			idx = len(a.values)
			a.valueIdx[key] = idx
			a.values = append(a.values, ValueUpdate{Location: target.Location})
		}
		a.values[idx].Values = append(a.values[idx].Values, value)
		return true
	case provider.TargetUIState:
		if _, ok := a.sanitize[target.Option]; ok {
			value.Value = sanitizeValue(value.Value)
		}
		key := target.Location.Key() + "#" + target.Option
		idx, ok := a.stateIdx[key]
		if !ok {
			idx = len(a.states)
			a.stateIdx[key] = idx
			a.states = append(a.states, UIStateUpdate{Location: target.Location, Option: target.Option})
		}
		a.states[idx].Values = append(a.states[idx].Values, value)
		return true
	default:
		return false
	}
}

// Result snapshots what was collected so far.
func (a *Aggregator) Result() Result {
	var out Result
	if len(a.values) > 0 {
		out.Values = make([]ValueUpdate, len(a.values))
		for idx, update := range a.values {
			out.Values[idx] = ValueUpdate{
				Location: update.Location,
				Values:   append([]location.IndexedValue(nil), update.Values...),
			}
		}
	}
	if len(a.states) > 0 {
		out.UIStates = make([]UIStateUpdate, len(a.states))
		for idx, update := range a.states {
			out.UIStates[idx] = UIStateUpdate{
				Location: update.Location,
				Option:   update.Option,
				Values:   append([]location.IndexedValue(nil), update.Values...),
			}
		}
	}
	return out
}

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy
)

func sanitizeValue(value any) any {
	switch typed := value.(type) {
	case string:
		return sanitizeString(typed)
	case []string:
		out := make([]string, len(typed))
		for idx, item := range typed {
			out[idx] = sanitizeString(item)
		}
		return out
	default:
		return value
	}
}

func sanitizeString(raw string) string {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(strictPolicy.Sanitize(raw))
}
