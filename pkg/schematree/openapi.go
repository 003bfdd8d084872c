package schematree

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// FromOpenAPI converts an OpenAPI object schema into field specs: objects with
// properties become groups, arrays of objects become arrays, everything else is
// a leaf carrying the schema type as its hint. Properties are emitted in name
// order so the resulting tree is deterministic.
func FromOpenAPI(ref *openapi3.SchemaRef) ([]Spec, error) {
	if ref == nil || ref.Value == nil {
		return nil, errors.New("schematree: openapi schema is nil")
	}
	if !isObject(ref.Value) {
		return nil, fmt.Errorf("schematree: openapi schema %q is not an object", ref.Ref)
	}
	return convertProperties(ref.Value, map[*openapi3.Schema]bool{ref.Value: true})
}

// LoadOpenAPIComponent parses an OpenAPI document and converts the named
// components.schemas entry.
func LoadOpenAPIComponent(ctx context.Context, data []byte, component string) ([]Spec, error) {
	if len(data) == 0 {
		return nil, errors.New("schematree: openapi document is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("schematree: load openapi document: %w", err)
	}
	if doc.Components == nil {
		return nil, fmt.Errorf("schematree: openapi component %q not found", component)
	}
	ref, ok := doc.Components.Schemas[component]
	if !ok {
		return nil, fmt.Errorf("schematree: openapi component %q not found", component)
	}
	return FromOpenAPI(ref)
}

func convertProperties(schema *openapi3.Schema, visiting map[*openapi3.Schema]bool) ([]Spec, error) {
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]Spec, 0, len(names))
	for _, name := range names {
		spec, err := convertProperty(name, schema.Properties[name], visiting)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func convertProperty(name string, ref *openapi3.SchemaRef, visiting map[*openapi3.Schema]bool) (Spec, error) {
	if ref == nil || ref.Value == nil {
		return Leaf(name), nil
	}
	value := ref.Value
	if visiting[value] {
		return Spec{}, fmt.Errorf("schematree: openapi property %q is recursive", name)
	}

	switch {
	case isObject(value) && len(value.Properties) > 0:
		visiting[value] = true
		defer delete(visiting, value)
		children, err := convertProperties(value, visiting)
		if err != nil {
			return Spec{}, err
		}
		return Group(name, children...), nil
	case isArray(value) && value.Items != nil && value.Items.Value != nil &&
		isObject(value.Items.Value) && len(value.Items.Value.Properties) > 0:
		items := value.Items.Value
		if visiting[items] {
			return Spec{}, fmt.Errorf("schematree: openapi array %q is recursive", name)
		}
		visiting[items] = true
		defer delete(visiting, items)
		children, err := convertProperties(items, visiting)
		if err != nil {
			return Spec{}, err
		}
		return Array(name, children...), nil
	default:
		return TypedLeaf(name, schemaType(value)), nil
	}
}

func isObject(schema *openapi3.Schema) bool {
	if schema.Type == nil {
		return len(schema.Properties) > 0
	}
	return schema.Type.Is(openapi3.TypeObject)
}

func isArray(schema *openapi3.Schema) bool {
	return schema.Type != nil && schema.Type.Is(openapi3.TypeArray)
}

func schemaType(schema *openapi3.Schema) string {
	if schema.Type == nil {
		return ""
	}
	return strings.Join(schema.Type.Slice(), ",")
}
