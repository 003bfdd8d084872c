package formdef_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/binding"
	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/formdef"
	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/schematree"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

const filterDefinition = `
forms:
  row-filter:
    title: Row filter
    sections:
      - name: model
        fields:
          - name: mode
          - name: status
          - name: rules
            kind: array
            fields:
              - name: enabled
                type: boolean
              - name: name
                type: string
      - name: options
        openapi:
          document: filter.openapi.yaml
          component: FilterOptions
      - name: view
        jsonschema: view.schema.json
    providers:
      - kind: constant
        target: model.status
        option: status
        params:
          value: ready
      - kind: visibility
        target: model.rules[].name
        option: hidden
        params:
          rule: model.rules[].enabled == true
          hide: true
      - kind: choices
        target: model.mode
        option: names
        on: [before-open-dialog]
        params:
          source: model.rules[].name
          sorted: true
`

const filterOpenAPI = `
openapi: 3.0.3
info:
  title: filter
  version: "1"
paths: {}
components:
  schemas:
    FilterOptions:
      type: object
      properties:
        caseSensitive:
          type: boolean
        limit:
          type: integer
`

const filterSettings = `{
  "model": {
    "mode": "strict",
    "status": "idle",
    "rules": [
      {"enabled": true, "name": "zeta"},
      {"enabled": false, "name": "alpha"}
    ]
  },
  "options": {"caseSensitive": false, "limit": 10}
}`

func filterFS() fstest.MapFS {
	return fstest.MapFS{
		"forms/filter.form.yaml":      {Data: []byte(filterDefinition)},
		"forms/filter.openapi.yaml":   {Data: []byte(filterOpenAPI)},
		"forms/view.schema.json":      {Data: []byte(`{"type": "object", "properties": {"title": {"type": "string"}}}`)},
		"forms/notes.txt":             {Data: []byte("ignored")},
		"forms/unrelated.config.yaml": {Data: []byte("not: a definition")},
	}
}

func TestLoadFSCompilesForm(t *testing.T) {
	catalog, err := formdef.LoadFS(context.Background(), filterFS())
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if diff := cmp.Diff([]string{"row-filter"}, catalog.Forms()); diff != "" {
		t.Fatalf("forms mismatch (-want +got):\n%s", diff)
	}

	def, ok := catalog.Definition("row-filter")
	if !ok {
		t.Fatalf("definition not found")
	}
	if def.Title != "Row filter" || def.Source != "forms/filter.form.yaml" {
		t.Fatalf("unexpected definition header: %q %q", def.Title, def.Source)
	}

	e, err := catalog.Engine("row-filter", formdef.NewFactories())
	if err != nil {
		t.Fatalf("Engine: %v", err)
	}
	if _, ok := e.Tree().Resolve(testsupport.Loc(t, "options.limit")); !ok {
		t.Fatalf("openapi section was not attached")
	}
	if _, ok := e.Tree().Resolve(testsupport.Loc(t, "view.title")); !ok {
		t.Fatalf("json schema section was not attached")
	}

	result, err := e.Fire(context.Background(), trigger.BeforeOpen(), testsupport.Snapshot(t, filterSettings))
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}

	status, _ := result.UIState(testsupport.Loc(t, "model.status"), "status")
	testsupport.AssertValues(t, []location.IndexedValue{{Value: "ready"}}, status)

	hidden, _ := result.UIState(testsupport.Loc(t, "model.rules[].name"), "hidden")
	testsupport.AssertValues(t, []location.IndexedValue{
		{Index: location.Index{0}, Value: false},
		{Index: location.Index{1}, Value: true},
	}, hidden)

	names, _ := result.UIState(testsupport.Loc(t, "model.mode"), "names")
	testsupport.AssertValues(t, []location.IndexedValue{{Value: []string{"alpha", "zeta"}}}, names)
}

func TestLoadFSRejectsDuplicateForms(t *testing.T) {
	fsys := filterFS()
	fsys["other/copy.form.yaml"] = &fstest.MapFile{Data: []byte(filterDefinition)}
	fsys["other/filter.openapi.yaml"] = &fstest.MapFile{Data: []byte(filterOpenAPI)}

	_, err := formdef.LoadFS(context.Background(), fsys)
	if err == nil || !strings.Contains(err.Error(), `duplicate form "row-filter"`) {
		t.Fatalf("expected duplicate form error, got %v", err)
	}
}

func TestLoadFSRejectsAmbiguousSections(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.form.json": {Data: []byte(`{"forms": {"f": {"sections": [{"name": "model", "fields": [{"name": "a"}], "jsonschema": "x.json"}]}}}`)},
	}
	_, err := formdef.LoadFS(context.Background(), fsys)
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("expected mutually exclusive error, got %v", err)
	}
}

func TestLoadFSNilFilesystem(t *testing.T) {
	catalog, err := formdef.LoadFS(context.Background(), nil)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if !catalog.Empty() {
		t.Fatalf("expected empty catalog")
	}
}

func TestParseValidatesAgainstSchema(t *testing.T) {
	cases := map[string]string{
		"missing kind": `{"forms": {"f": {"sections": [{"name": "model", "fields": [{"name": "a"}]}], "providers": [{"target": "model.a"}]}}}`,
		"bad field kind": `
forms:
  f:
    sections:
      - name: model
        fields:
          - name: a
            kind: list
`,
		"unknown property": `{"forms": {"f": {"sections": [{"name": "model", "fields": [{"name": "a"}]}], "layout": "grid"}}}`,
		"no sections":      `{"forms": {"f": {"sections": []}}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := formdef.Parse([]byte(raw), "inline.form.yaml")
			var validationErr *formdef.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(validationErr.Problems) == 0 {
				t.Fatalf("expected at least one problem")
			}
			if validationErr.Source != "inline.form.yaml" {
				t.Fatalf("unexpected source %q", validationErr.Source)
			}
		})
	}
}

func TestParseRejectsEmptyAndGarbage(t *testing.T) {
	if _, err := formdef.Parse([]byte("  \n"), "empty.form.yaml"); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}
	if _, err := formdef.Parse([]byte("forms: [unclosed"), "bad.form.yaml"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestJSONSchemaIsReflectedFromDocument(t *testing.T) {
	raw, err := formdef.JSONSchema()
	if err != nil {
		t.Fatalf("JSONSchema: %v", err)
	}
	for _, fragment := range []string{`"forms"`, `"providers"`, `"openapi"`} {
		if !strings.Contains(string(raw), fragment) {
			t.Fatalf("schema is missing %s", fragment)
		}
	}
}

func TestCompileJoinsProviderErrors(t *testing.T) {
	def := &formdef.Definition{
		ID:       "broken",
		Sections: modelSections(),
		Providers: []formdef.ProviderSpec{
			{Kind: "nope", Target: "model.a"},
			{Kind: formdef.KindConstant, Target: "model.a"},
			{Kind: formdef.KindCopy, Params: map[string]any{"source": "model.a"}},
			{Kind: formdef.KindVisibility, Target: "model.a", Option: "visible", Params: map[string]any{"rule": "model.a &&"}},
		},
	}
	_, _, err := def.Compile(formdef.NewFactories())
	if err == nil {
		t.Fatalf("expected compile error")
	}
	for _, fragment := range []string{
		`unknown provider kind "nope"`,
		`param "value" is required`,
		"needs an id",
		"provider 3",
	} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q is missing %q", err, fragment)
		}
	}
}

func TestCompileRegistersStateProvidersAndCustomKinds(t *testing.T) {
	factories := formdef.NewFactories()
	factories.Register("double", func(spec formdef.ProviderSpec, triggers []trigger.Trigger) (provider.Provider, error) {
		var from provider.Handle
		return provider.New(func(r provider.Recorder) error {
			from = r.ComputeFrom(provider.ID(spec.Params["from"].(string)))
			return nil
		}, func(_ context.Context, in provider.Inputs) (any, error) {
			value, _ := in.Value(from).(string)
			return value + value, nil
		}), nil
	})

	def := &formdef.Definition{
		ID:       "custom",
		Sections: modelSections(),
		Providers: []formdef.ProviderSpec{
			{ID: "base", Kind: formdef.KindConstant, Params: map[string]any{"value": "ab"}},
			{Kind: "double", Target: "model.a", Params: map[string]any{"from": "base"}},
		},
	}
	tree, reg, err := def.Compile(factories)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 registrations, got %d", reg.Len())
	}

	e, err := engine.New(tree, reg)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	result, err := e.Fire(context.Background(), trigger.BeforeOpen(), testsupport.Snapshot(t, `{"model": {"a": ""}}`))
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}
	got, _ := result.Value(testsupport.Loc(t, "model.a"))
	testsupport.AssertValues(t, []location.IndexedValue{{Value: "abab"}}, got)
}

func TestCatalogEngineUnknownForm(t *testing.T) {
	catalog, err := formdef.LoadFS(context.Background(), filterFS())
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if _, err := catalog.Engine("missing", formdef.NewFactories()); !errors.Is(err, formdef.ErrUnknownForm) {
		t.Fatalf("expected ErrUnknownForm, got %v", err)
	}

	pool, err := engine.NewPool(2, catalog.CompileFunc(formdef.NewFactories()))
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	if _, err := pool.Get(context.Background(), "row-filter"); err != nil {
		t.Fatalf("pool.Get: %v", err)
	}
}

func TestCompileSurfacesBindingErrorsThroughEngine(t *testing.T) {
	def := &formdef.Definition{
		ID:       "dangling",
		Sections: modelSections(),
		Providers: []formdef.ProviderSpec{
			{Kind: formdef.KindCopy, Target: "model.a", Params: map[string]any{"source": "model.missing"}},
		},
	}
	tree, reg, err := def.Compile(formdef.NewFactories())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := engine.New(tree, reg); !errors.Is(err, binding.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func modelSections() []schematree.Section {
	return []schematree.Section{{Name: "model", Fields: []schematree.Spec{schematree.Leaf("a")}}}
}
