package location

import (
	"strconv"
	"strings"
)

// Index names one element per enclosing array, outermost first.
type Index []int

// Key renders the index as a compact map key (`0.1`).
func (i Index) Key() string {
	if len(i) == 0 {
		return ""
	}
	parts := make([]string, len(i))
	for idx, value := range i {
		parts[idx] = strconv.Itoa(value)
	}
	return strings.Join(parts, ".")
}

// String renders the index for logs.
func (i Index) String() string {
	return "(" + strings.ReplaceAll(i.Key(), ".", ",") + ")"
}

// Clone returns a non-nil copy.
func (i Index) Clone() Index {
	out := make(Index, len(i))
	copy(out, i)
	return out
}

// Prefix returns a copy of the first n entries, clamped to the index length.
func (i Index) Prefix(n int) Index {
	if n > len(i) {
		n = len(i)
	}
	if n < 0 {
		n = 0
	}
	return i[:n].Clone()
}

// Append returns a copy with value added at the end.
func (i Index) Append(value int) Index {
	out := make(Index, len(i), len(i)+1)
	copy(out, i)
	return append(out, value)
}

// HasPrefix reports whether i starts with prefix.
func (i Index) HasPrefix(prefix Index) bool {
	if len(prefix) > len(i) {
		return false
	}
	for idx := range prefix {
		if i[idx] != prefix[idx] {
			return false
		}
	}
	return true
}

// Equal reports whether both indices hold the same entries.
func (i Index) Equal(other Index) bool {
	return len(i) == len(other) && i.HasPrefix(other)
}

// IndexedValue tags a value with the array elements it belongs to.
type IndexedValue struct {
	Index Index `json:"index"`
	Value any   `json:"value"`
}

// Values strips the indices, keeping order.
func Values(values []IndexedValue) []any {
	if len(values) == 0 {
		return nil
	}
	out := make([]any, len(values))
	for idx, value := range values {
		out[idx] = value.Value
	}
	return out
}
