package updates

import (
	"github.com/goliatone/go-formflow/pkg/location"
)

// ValueUpdate carries the new values of one field.
type ValueUpdate struct {
	Location location.Location        `json:"location"`
	Values   []location.IndexedValue `json:"values"`
}

// UIStateUpdate carries the new values of one UI option of a field.
type UIStateUpdate struct {
	Location location.Location        `json:"location"`
	Option   string                   `json:"option"`
	Values   []location.IndexedValue `json:"values"`
}

// Result is what a trigger invocation produced. Buckets keep the order in
// which their keys were first written.
type Result struct {
	Values   []ValueUpdate   `json:"values,omitempty"`
	UIStates []UIStateUpdate `json:"uiStates,omitempty"`
}

// Value returns the value updates of the field at loc.
func (r Result) Value(loc location.Location) ([]location.IndexedValue, bool) {
	for _, update := range r.Values {
		if update.Location.Equal(loc) {
			return update.Values, true
		}
	}
	return nil, false
}

// UIState returns the updates of the named UI option of the field at loc.
func (r Result) UIState(loc location.Location, option string) ([]location.IndexedValue, bool) {
	for _, update := range r.UIStates {
		if update.Option == option && update.Location.Equal(loc) {
			return update.Values, true
		}
	}
	return nil, false
}

// Empty reports whether nothing was produced.
func (r Result) Empty() bool {
	return len(r.Values) == 0 && len(r.UIStates) == 0
}
