package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/updates"
)

// Snapshot is an immutable settings object: one nested map per form section.
// Arrays hold []any of element maps.
type Snapshot struct {
	sections map[string]any
}

// New copies sections into a snapshot.
func New(sections map[string]any) *Snapshot {
	out := make(map[string]any, len(sections))
	for name, value := range sections {
		out[name] = cloneValue(value)
	}
	return &Snapshot{sections: out}
}

// Decode parses a JSON or YAML object whose keys are section names.
func Decode(data []byte) (*Snapshot, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return New(nil), nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = nil
		if yerr := yaml.Unmarshal(data, &raw); yerr != nil {
			return nil, fmt.Errorf("settings: decode: invalid JSON or YAML: %w", yerr)
		}
	}

	for name, value := range raw {
		if value == nil {
			continue
		}
		if _, ok := value.(map[string]any); !ok {
			return nil, fmt.Errorf("settings: section %q is a %T, not an object", name, value)
		}
	}
	return New(raw), nil
}

// Load reads and decodes a settings file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	return Decode(data)
}

// Sections returns a deep copy of the settings object.
func (s *Snapshot) Sections() map[string]any {
	out := make(map[string]any, len(s.sections))
	for name, value := range s.sections {
		out[name] = cloneValue(value)
	}
	return out
}

// SectionNames lists the sections, sorted.
func (s *Snapshot) SectionNames() []string {
	names := make([]string, 0, len(s.sections))
	for name := range s.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON renders the settings object.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.sections)
}

// Value returns the value at loc for the element combination idx. Absent
// fields read as nil.
func (s *Snapshot) Value(loc location.Location, idx location.Index) (any, error) {
	if len(idx) != loc.Depth() {
		return nil, fmt.Errorf("settings: %s needs %d index entries, got %d", loc, loc.Depth(), len(idx))
	}
	current := s.sections[loc.Section]
	for level, path := range loc.Paths {
		current = descend(current, path)
		if level == len(loc.Paths)-1 {
			break
		}
		element, err := elementAt(current, idx[level], loc)
		if err != nil {
			return nil, err
		}
		current = element
	}
	return cloneValue(current), nil
}

// Len returns the element count of the array at loc. Absent arrays are empty.
func (s *Snapshot) Len(array location.Location, idx location.Index) (int, error) {
	value, err := s.Value(array, idx)
	if err != nil {
		return 0, err
	}
	switch typed := value.(type) {
	case nil:
		return 0, nil
	case []any:
		return len(typed), nil
	default:
		return 0, fmt.Errorf("settings: %s is a %T, not an array", array, value)
	}
}

// With returns a copy with value stored at loc for idx.
func (s *Snapshot) With(loc location.Location, idx location.Index, value any) (*Snapshot, error) {
	out := New(s.sections)
	if err := out.set(loc, idx, value); err != nil {
		return nil, err
	}
	return out, nil
}

// Apply returns a copy with every value update of result stored. UI-state
// updates are not part of the settings and are ignored.
func (s *Snapshot) Apply(result updates.Result) (*Snapshot, error) {
	out := New(s.sections)
	for _, update := range result.Values {
		for _, value := range update.Values {
			if err := out.set(update.Location, value.Index, value.Value); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (s *Snapshot) set(loc location.Location, idx location.Index, value any) error {
	if len(idx) != loc.Depth() {
		return fmt.Errorf("settings: %s needs %d index entries, got %d", loc, loc.Depth(), len(idx))
	}
	if len(loc.Paths) == 0 {
		return fmt.Errorf("settings: cannot replace section %q", loc.Section)
	}
	section, _ := s.sections[loc.Section].(map[string]any)
	if section == nil {
		section = make(map[string]any)
		s.sections[loc.Section] = section
	}

	container := section
	for level, path := range loc.Paths {
		last := level == len(loc.Paths)-1
		parent := ensureMaps(container, path[:len(path)-1])
		name := path[len(path)-1]
		if last {
			parent[name] = cloneValue(value)
			return nil
		}
		element, err := elementAt(parent[name], idx[level], loc)
		if err != nil {
			return err
		}
		next, ok := element.(map[string]any)
		if !ok {
			return fmt.Errorf("settings: element %d of %s is a %T, not an object", idx[level], loc, element)
		}
		container = next
	}
	return nil
}

func descend(current any, path location.FieldPath) any {
	for _, name := range path {
		object, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = object[name]
	}
	return current
}

func ensureMaps(container map[string]any, names []string) map[string]any {
	for _, name := range names {
		next, ok := container[name].(map[string]any)
		if !ok {
			next = make(map[string]any)
			container[name] = next
		}
		container = next
	}
	return container
}

func elementAt(value any, i int, loc location.Location) (any, error) {
	elements, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("settings: %s crosses a missing array", loc)
	}
	if i < 0 || i >= len(elements) {
		return nil, fmt.Errorf("settings: index %d out of range for %s (len %d)", i, loc, len(elements))
	}
	return elements[i], nil
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}
