package provider

import (
	"strings"
	"sync"

	"github.com/goliatone/go-formflow/pkg/location"
)

// TargetKind states what a provider supplies.
type TargetKind int

const (
	// TargetNone marks intermediate providers whose output is only read by
	// other providers.
	TargetNone TargetKind = iota
	// TargetValue supplies the value of a field.
	TargetValue
	// TargetUIState supplies a named UI option of a field (choices, visibility,
	// messages, ...).
	TargetUIState
)

// Target is the field (and option) a provider supplies.
type Target struct {
	Kind     TargetKind
	Location location.Location
	Option   string
}

// Entry is one registration.
type Entry struct {
	ID       ID
	Target   Target
	Provider Provider
}

// EntryOption customises a registration.
type EntryOption func(*Entry)

// WithID overrides the generated provider id.
func WithID(id ID) EntryOption {
	return func(e *Entry) {
		if trimmed := strings.TrimSpace(string(id)); trimmed != "" {
			e.ID = ID(trimmed)
		}
	}
}

// Registry maps form fields to the providers supplying them. It is assembled
// once per schema; validation happens when bindings are resolved so every
// problem is reported together.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Value registers p as the supplier of the value of the field at loc. The
// default id is `value:<location>`.
func (r *Registry) Value(loc location.Location, p Provider, opts ...EntryOption) ID {
	return r.add(Entry{
		ID:       ID("value:" + loc.Key()),
		Target:   Target{Kind: TargetValue, Location: loc},
		Provider: p,
	}, opts)
}

// UIState registers p as the supplier of the UI option of the field at loc.
// The default id is `ui:<location>#<option>`.
func (r *Registry) UIState(loc location.Location, option string, p Provider, opts ...EntryOption) ID {
	return r.add(Entry{
		ID:       ID("ui:" + loc.Key() + "#" + option),
		Target:   Target{Kind: TargetUIState, Location: loc, Option: option},
		Provider: p,
	}, opts)
}

// State registers an intermediate provider under id.
func (r *Registry) State(id ID, p Provider) ID {
	return r.add(Entry{ID: id, Provider: p}, nil)
}

func (r *Registry) add(entry Entry, opts []EntryOption) ID {
	for _, opt := range opts {
		if opt != nil {
			opt(&entry)
		}
	}
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
	return entry.ID
}

// Entries returns the registrations in order.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len reports the number of registrations.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
