package formdef

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/schematree"
)

// Definition is one loaded form.
type Definition struct {
	ID        string
	Title     string
	Source    string
	Sections  []schematree.Section
	Providers []ProviderSpec
}

// Catalog holds every form found by LoadFS.
type Catalog struct {
	forms map[string]*Definition
}

// LoadFS walks fsys and loads every definition file. Definition files end in
// .form.json, .form.yaml or .form.yml; OpenAPI documents they reference are
// read relative to the definition file. A nil fsys yields an empty catalog.
func LoadFS(ctx context.Context, fsys fs.FS) (*Catalog, error) {
	catalog := &Catalog{forms: make(map[string]*Definition)}
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(name) {
			return nil
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("formdef: read %s: %w", name, err)
		}
		doc, err := Parse(data, name)
		if err != nil {
			return err
		}

		for rawID, form := range doc.Forms {
			id := strings.TrimSpace(rawID)
			if id == "" {
				return fmt.Errorf("formdef: file %s defines an empty form id", name)
			}
			if existing, exists := catalog.forms[id]; exists {
				return fmt.Errorf("formdef: duplicate form %q (files %s and %s)", id, existing.Source, name)
			}
			def, err := normaliseForm(ctx, fsys, id, name, form)
			if err != nil {
				return err
			}
			catalog.forms[id] = def
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// Parse decodes and validates one definition file. JSON is tried first, then
// YAML.
func Parse(data []byte, source string) (Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, fmt.Errorf("formdef: file %s is empty", source)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		var fromYAML any
		if yamlErr := yaml.Unmarshal(data, &fromYAML); yamlErr != nil {
			return Document{}, fmt.Errorf("formdef: parse %s: invalid JSON or YAML", source)
		}
		normalised, err := json.Marshal(fromYAML)
		if err != nil {
			return Document{}, fmt.Errorf("formdef: parse %s: %w", source, err)
		}
		data = normalised
		if err := json.Unmarshal(data, &instance); err != nil {
			return Document{}, fmt.Errorf("formdef: parse %s: %w", source, err)
		}
	}

	if err := validate(instance, source); err != nil {
		return Document{}, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("formdef: decode %s: %w", source, err)
	}
	return doc, nil
}

func normaliseForm(ctx context.Context, fsys fs.FS, id, source string, form Form) (*Definition, error) {
	def := &Definition{
		ID:        id,
		Title:     form.Title,
		Source:    source,
		Providers: append([]ProviderSpec(nil), form.Providers...),
	}
	for _, section := range form.Sections {
		fields, err := sectionFields(ctx, fsys, source, section)
		if err != nil {
			return nil, fmt.Errorf("formdef: form %q (file %s) section %q: %w", id, source, section.Name, err)
		}
		def.Sections = append(def.Sections, schematree.Section{Name: section.Name, Fields: fields})
	}
	return def, nil
}

func sectionFields(ctx context.Context, fsys fs.FS, source string, section Section) ([]schematree.Spec, error) {
	sources := 0
	for _, set := range []bool{len(section.Fields) > 0, section.OpenAPI != nil, section.JSONSchema != ""} {
		if set {
			sources++
		}
	}
	switch {
	case sources == 0:
		return nil, fmt.Errorf("no fields declared")
	case sources > 1:
		return nil, fmt.Errorf("fields, openapi and jsonschema are mutually exclusive")
	case section.OpenAPI != nil:
		data, err := fs.ReadFile(fsys, path.Join(path.Dir(source), section.OpenAPI.Document))
		if err != nil {
			return nil, fmt.Errorf("read openapi document: %w", err)
		}
		return schematree.LoadOpenAPIComponent(ctx, data, section.OpenAPI.Component)
	case section.JSONSchema != "":
		data, err := fs.ReadFile(fsys, path.Join(path.Dir(source), section.JSONSchema))
		if err != nil {
			return nil, fmt.Errorf("read json schema: %w", err)
		}
		return schematree.FromJSONSchema(data)
	default:
		return fieldSpecs(section.Fields), nil
	}
}

func fieldSpecs(fields []Field) []schematree.Spec {
	out := make([]schematree.Spec, 0, len(fields))
	for _, field := range fields {
		switch field.Kind {
		case "group":
			out = append(out, schematree.Group(field.Name, fieldSpecs(field.Fields)...))
		case "array":
			out = append(out, schematree.Array(field.Name, fieldSpecs(field.Fields)...))
		default:
			out = append(out, schematree.TypedLeaf(field.Name, field.Type))
		}
	}
	return out
}

func isDefinitionFile(name string) bool {
	lower := strings.ToLower(path.Base(name))
	for _, suffix := range []string{".form.json", ".form.yaml", ".form.yml"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// Forms lists the form ids in sorted order.
func (c *Catalog) Forms() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.forms))
	for id := range c.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Definition returns the form with the given id.
func (c *Catalog) Definition(id string) (*Definition, bool) {
	if c == nil {
		return nil, false
	}
	def, ok := c.forms[id]
	return def, ok
}

// Empty reports whether the catalog holds any forms.
func (c *Catalog) Empty() bool {
	return c == nil || len(c.forms) == 0
}
