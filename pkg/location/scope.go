package location

import (
	"fmt"
	"strings"
)

const (
	scopePrefix     = "#/"
	scopeProperties = "properties"
	scopeItems      = "items"
)

// Scope renders the JSON-Forms style scope of l, the identity value-change
// triggers are keyed by.
func (l Location) Scope() string {
	var sb strings.Builder
	sb.WriteString("#/properties/")
	sb.WriteString(l.Section)
	for idx, path := range l.Paths {
		if idx > 0 {
			sb.WriteString("/items")
		}
		for _, name := range path {
			sb.WriteString("/properties/")
			sb.WriteString(name)
		}
	}
	return sb.String()
}

// ParseScope reads a JSON-Forms style scope back into a Location.
func ParseScope(scope string) (Location, error) {
	trimmed := strings.TrimSpace(scope)
	if !strings.HasPrefix(trimmed, scopePrefix) {
		return Location{}, fmt.Errorf("location: scope %q must start with %q", scope, scopePrefix)
	}
	tokens := strings.Split(strings.TrimPrefix(trimmed, scopePrefix), "/")

	var loc Location
	current := FieldPath(nil)
	for idx := 0; idx < len(tokens); idx++ {
		switch tokens[idx] {
		case scopeProperties:
			if idx+1 >= len(tokens) || tokens[idx+1] == "" {
				return Location{}, fmt.Errorf("location: scope %q ends without a property name", scope)
			}
			name := tokens[idx+1]
			idx++
			if loc.Section == "" {
				loc.Section = name
				continue
			}
			current = append(current, name)
		case scopeItems:
			if loc.Section == "" || len(current) == 0 {
				return Location{}, fmt.Errorf("location: scope %q has items without an array", scope)
			}
			loc.Paths = append(loc.Paths, current)
			current = nil
		default:
			return Location{}, fmt.Errorf("location: unexpected token %q in scope %q", tokens[idx], scope)
		}
	}
	if loc.Section == "" {
		return Location{}, fmt.Errorf("location: scope %q names no section", scope)
	}
	if len(current) > 0 {
		loc.Paths = append(loc.Paths, current)
	} else if len(loc.Paths) > 0 {
		return Location{}, fmt.Errorf("location: scope %q ends at an array", scope)
	}
	return loc, nil
}
