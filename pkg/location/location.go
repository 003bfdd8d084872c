package location

import (
	"errors"
	"fmt"
	"strings"
)

const arrayMarker = "[]"

// FieldPath is an ordered list of names below a section root or an array
// element.
type FieldPath []string

// String joins the path with dots.
func (p FieldPath) String() string {
	return strings.Join(p, ".")
}

// Equal reports whether both paths hold the same names.
func (p FieldPath) Equal(other FieldPath) bool {
	if len(p) != len(other) {
		return false
	}
	for idx := range p {
		if p[idx] != other[idx] {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not share storage with p.
func (p FieldPath) Clone() FieldPath {
	if p == nil {
		return nil
	}
	out := make(FieldPath, len(p))
	copy(out, p)
	return out
}

// Location is the canonical address of a node: the form section plus one
// FieldPath per array nesting level. A field outside any array has a single
// path; a field inside `rules[]` has two (`[rules] [value]`).
type Location struct {
	Section string
	Paths   []FieldPath
}

// New builds a Location from a section and its paths.
func New(section string, paths ...FieldPath) Location {
	cloned := make([]FieldPath, len(paths))
	for idx, path := range paths {
		cloned[idx] = path.Clone()
	}
	return Location{Section: section, Paths: cloned}
}

// Field is shorthand for a Location outside any array.
func Field(section string, names ...string) Location {
	return New(section, FieldPath(names))
}

// IsZero reports whether the Location addresses nothing.
func (l Location) IsZero() bool {
	return l.Section == "" && len(l.Paths) == 0
}

// Depth returns the number of arrays enclosing the addressed node.
func (l Location) Depth() int {
	if len(l.Paths) == 0 {
		return 0
	}
	return len(l.Paths) - 1
}

// Arrays lists the Locations of the enclosing arrays, outermost first.
func (l Location) Arrays() []Location {
	depth := l.Depth()
	if depth == 0 {
		return nil
	}
	out := make([]Location, depth)
	for level := 1; level <= depth; level++ {
		out[level-1] = New(l.Section, l.Paths[:level]...)
	}
	return out
}

// Child returns the Location of a descendant inside the same array element.
func (l Location) Child(names ...string) Location {
	out := New(l.Section, l.Paths...)
	if len(out.Paths) == 0 {
		out.Paths = []FieldPath{nil}
	}
	last := len(out.Paths) - 1
	out.Paths[last] = append(out.Paths[last], names...)
	return out
}

// Element returns the Location of a field inside the elements of the array
// addressed by l.
func (l Location) Element(names ...string) Location {
	out := New(l.Section, l.Paths...)
	out.Paths = append(out.Paths, FieldPath(names).Clone())
	return out
}

// Equal reports whether both Locations address the same node.
func (l Location) Equal(other Location) bool {
	if l.Section != other.Section || len(l.Paths) != len(other.Paths) {
		return false
	}
	for idx := range l.Paths {
		if !l.Paths[idx].Equal(other.Paths[idx]) {
			return false
		}
	}
	return true
}

// String renders the compact form, e.g. `model.rules[].value`.
func (l Location) String() string {
	if len(l.Paths) == 0 {
		return l.Section
	}
	parts := make([]string, len(l.Paths))
	for idx, path := range l.Paths {
		parts[idx] = path.String()
	}
	joined := strings.Join(parts, arrayMarker+".")
	if l.Section == "" {
		return joined
	}
	if joined == "" {
		return l.Section
	}
	return l.Section + "." + joined
}

// Key is the map key used for this Location throughout the engine.
func (l Location) Key() string {
	return l.String()
}

// MarshalText renders the compact form so Locations serialise as strings.
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses the compact form.
func (l *Location) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Parse reads the compact form. The first segment is the section, `[]`
// closes an array level: `model.rules[].value` yields section `model` and the
// paths `[rules] [value]`.
func Parse(raw string) (Location, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Location{}, errors.New("location: empty location")
	}

	section, rest, found := strings.Cut(trimmed, ".")
	if section == "" || strings.Contains(section, arrayMarker) {
		return Location{}, fmt.Errorf("location: invalid section in %q", raw)
	}
	if !found {
		return Location{Section: section}, nil
	}

	segments := strings.Split(rest, arrayMarker)
	if segments[len(segments)-1] == "" && len(segments) > 1 {
		segments = segments[:len(segments)-1]
	}

	paths := make([]FieldPath, 0, len(segments))
	for level, segment := range segments {
		if level > 0 {
			if !strings.HasPrefix(segment, ".") {
				return Location{}, fmt.Errorf("location: expected '.' after %q in %q", arrayMarker, raw)
			}
			segment = segment[1:]
		}
		if segment == "" {
			return Location{}, fmt.Errorf("location: empty path segment in %q", raw)
		}
		names := strings.Split(segment, ".")
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				return Location{}, fmt.Errorf("location: empty name in %q", raw)
			}
		}
		paths = append(paths, FieldPath(names))
	}
	return Location{Section: section, Paths: paths}, nil
}

// MustParse is Parse for static locations; it panics on malformed input.
func MustParse(raw string) Location {
	loc, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return loc
}

// SharedArrays returns how many enclosing arrays, counted from the outermost,
// a and b have in common.
func SharedArrays(a, b Location) int {
	if a.Section != b.Section {
		return 0
	}
	limit := a.Depth()
	if other := b.Depth(); other < limit {
		limit = other
	}
	shared := 0
	for level := 0; level < limit; level++ {
		if !a.Paths[level].Equal(b.Paths[level]) {
			break
		}
		shared++
	}
	return shared
}
