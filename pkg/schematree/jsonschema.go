package schematree

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromJSONSchema converts a JSON Schema object document into field specs,
// following the same rules as FromOpenAPI. Local references into $defs or
// definitions are resolved; remote references are rejected. YAML documents
// are accepted too.
func FromJSONSchema(data []byte) ([]Spec, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("schematree: json schema document is empty")
	}
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		root = nil
		if yerr := yaml.Unmarshal(data, &root); yerr != nil {
			return nil, fmt.Errorf("schematree: parse json schema: invalid JSON or YAML")
		}
	}
	c := &jsonSchemaConverter{root: root, visiting: make(map[string]bool)}
	node, err := c.deref(root)
	if err != nil {
		return nil, err
	}
	if !jsonSchemaIsObject(node) {
		return nil, errors.New("schematree: json schema root is not an object")
	}
	return c.properties(node)
}

type jsonSchemaConverter struct {
	root     map[string]any
	visiting map[string]bool
}

func (c *jsonSchemaConverter) properties(node map[string]any) ([]Spec, error) {
	props, _ := node["properties"].(map[string]any)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]Spec, 0, len(names))
	for _, name := range names {
		spec, err := c.property(name, props[name])
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (c *jsonSchemaConverter) property(name string, raw any) (Spec, error) {
	node, _ := raw.(map[string]any)
	if ref, ok := node["$ref"].(string); ok {
		if c.visiting[ref] {
			return Spec{}, fmt.Errorf("schematree: json schema property %q is recursive", name)
		}
		c.visiting[ref] = true
		defer delete(c.visiting, ref)
	}
	node, err := c.deref(node)
	if err != nil {
		return Spec{}, err
	}

	switch {
	case jsonSchemaIsObject(node) && hasProperties(node):
		children, err := c.properties(node)
		if err != nil {
			return Spec{}, err
		}
		return Group(name, children...), nil
	case jsonSchemaType(node) == "array":
		rawItems, _ := node["items"].(map[string]any)
		if ref, ok := rawItems["$ref"].(string); ok {
			if c.visiting[ref] {
				return Spec{}, fmt.Errorf("schematree: json schema array %q is recursive", name)
			}
			c.visiting[ref] = true
			defer delete(c.visiting, ref)
		}
		items, err := c.deref(rawItems)
		if err != nil {
			return Spec{}, err
		}
		if jsonSchemaIsObject(items) && hasProperties(items) {
			children, err := c.properties(items)
			if err != nil {
				return Spec{}, err
			}
			return Array(name, children...), nil
		}
		return TypedLeaf(name, "array"), nil
	default:
		return TypedLeaf(name, jsonSchemaType(node)), nil
	}
}

// deref follows local $ref chains.
func (c *jsonSchemaConverter) deref(node map[string]any) (map[string]any, error) {
	for hops := 0; node != nil; hops++ {
		ref, ok := node["$ref"].(string)
		if !ok {
			return node, nil
		}
		if hops > 32 {
			return nil, fmt.Errorf("schematree: json schema reference %q does not terminate", ref)
		}
		if !strings.HasPrefix(ref, "#/") {
			return nil, fmt.Errorf("schematree: json schema reference %q is not local", ref)
		}
		var current any = c.root
		for _, token := range strings.Split(strings.TrimPrefix(ref, "#/"), "/") {
			token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
			object, ok := current.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("schematree: json schema reference %q does not resolve", ref)
			}
			if current, ok = object[token]; !ok {
				return nil, fmt.Errorf("schematree: json schema reference %q does not resolve", ref)
			}
		}
		next, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("schematree: json schema reference %q is not a schema", ref)
		}
		node = next
	}
	return node, nil
}

func hasProperties(node map[string]any) bool {
	props, _ := node["properties"].(map[string]any)
	return len(props) > 0
}

func jsonSchemaIsObject(node map[string]any) bool {
	if node == nil {
		return false
	}
	if _, ok := node["type"]; !ok {
		return hasProperties(node)
	}
	return jsonSchemaType(node) == "object"
}

// jsonSchemaType returns the declared type, dropping "null" from type lists.
func jsonSchemaType(node map[string]any) string {
	switch typed := node["type"].(type) {
	case string:
		return typed
	case []any:
		var names []string
		for _, entry := range typed {
			if name, ok := entry.(string); ok && name != "null" {
				names = append(names, name)
			}
		}
		return strings.Join(names, ",")
	default:
		return ""
	}
}
