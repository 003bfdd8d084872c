package formdef

// Document is the top-level shape of a definition file.
type Document struct {
	Forms map[string]Form `json:"forms" yaml:"forms" jsonschema:"description=Forms keyed by id"`
}

// Form describes one node dialog.
type Form struct {
	Title     string         `json:"title,omitempty" yaml:"title,omitempty"`
	Sections  []Section      `json:"sections" yaml:"sections" jsonschema:"minItems=1"`
	Providers []ProviderSpec `json:"providers,omitempty" yaml:"providers,omitempty"`
}

// Section is a top-level settings object. Its fields are listed inline, taken
// from an OpenAPI component schema, or read from a JSON Schema document.
type Section struct {
	Name       string      `json:"name" yaml:"name" jsonschema:"minLength=1"`
	Fields     []Field     `json:"fields,omitempty" yaml:"fields,omitempty"`
	OpenAPI    *OpenAPIRef `json:"openapi,omitempty" yaml:"openapi,omitempty"`
	JSONSchema string      `json:"jsonschema,omitempty" yaml:"jsonschema,omitempty"`
}

// OpenAPIRef points at a component schema of an OpenAPI document stored next
// to the definition file.
type OpenAPIRef struct {
	Document  string `json:"document" yaml:"document" jsonschema:"minLength=1"`
	Component string `json:"component" yaml:"component" jsonschema:"minLength=1"`
}

// Field is one node of a section. Kind defaults to leaf.
type Field struct {
	Name   string  `json:"name" yaml:"name" jsonschema:"minLength=1"`
	Kind   string  `json:"kind,omitempty" yaml:"kind,omitempty" jsonschema:"enum=leaf,enum=group,enum=array"`
	Type   string  `json:"type,omitempty" yaml:"type,omitempty"`
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// ProviderSpec attaches a provider kind to a field. Without a target the
// provider is an intermediate state provider and needs an id. Option turns a
// value provider into a UI-state provider.
type ProviderSpec struct {
	ID     string         `json:"id,omitempty" yaml:"id,omitempty"`
	Kind   string         `json:"kind" yaml:"kind" jsonschema:"minLength=1"`
	Target string         `json:"target,omitempty" yaml:"target,omitempty"`
	Option string         `json:"option,omitempty" yaml:"option,omitempty"`
	On     []string       `json:"on,omitempty" yaml:"on,omitempty"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}
