package provider

import (
	"github.com/goliatone/go-formflow/pkg/location"
)

// Reducer folds per-element values into one value.
type Reducer func(values []location.IndexedValue) (any, error)

// AnyTrue reduces to true when at least one element holds boolean true.
func AnyTrue(values []location.IndexedValue) (any, error) {
	for _, value := range values {
		if b, ok := value.Value.(bool); ok && b {
			return true, nil
		}
	}
	return false, nil
}

// AllTrue reduces to true when every element holds boolean true. No elements
// reduce to true.
func AllTrue(values []location.IndexedValue) (any, error) {
	for _, value := range values {
		if b, ok := value.Value.(bool); !ok || !b {
			return false, nil
		}
	}
	return true, nil
}

// First reduces to the first element's value, nil without elements.
func First(values []location.IndexedValue) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	return values[0].Value, nil
}

// Collect reduces to the plain list of element values.
func Collect(values []location.IndexedValue) (any, error) {
	return location.Values(values), nil
}

// Count reduces to the number of elements.
func Count(values []location.IndexedValue) (any, error) {
	return len(values), nil
}
