package settings_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/invoke"
	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/settings"
	"github.com/goliatone/go-formflow/pkg/updates"
)

var _ invoke.Lookup = (*settings.Snapshot)(nil)

const fixtureYAML = `
model:
  mode: strict
  rules:
    - name: first
      enabled: true
      subs:
        - x: 1
        - x: 2
    - name: second
      enabled: false
`

func TestDecodeYAMLAndLookup(t *testing.T) {
	snap, err := settings.Decode([]byte(fixtureYAML))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	mode, err := snap.Value(location.MustParse("model.mode"), nil)
	if err != nil || mode != "strict" {
		t.Fatalf("unexpected mode %v (err=%v)", mode, err)
	}

	name, err := snap.Value(location.MustParse("model.rules[].name"), location.Index{1})
	if err != nil || name != "second" {
		t.Fatalf("unexpected name %v (err=%v)", name, err)
	}

	x, err := snap.Value(location.MustParse("model.rules[].subs[].x"), location.Index{0, 1})
	if err != nil || x != 2 {
		t.Fatalf("unexpected x %v (err=%v)", x, err)
	}

	n, err := snap.Len(location.MustParse("model.rules"), nil)
	if err != nil || n != 2 {
		t.Fatalf("unexpected rules len %d (err=%v)", n, err)
	}
	n, err = snap.Len(location.MustParse("model.rules[].subs"), location.Index{1})
	if err != nil || n != 0 {
		t.Fatalf("expected absent subs to be empty, got %d (err=%v)", n, err)
	}

	missing, err := snap.Value(location.MustParse("model.threshold"), nil)
	if err != nil || missing != nil {
		t.Fatalf("expected absent field to read nil, got %v (err=%v)", missing, err)
	}
}

func TestValueRejectsWrongIndexLength(t *testing.T) {
	snap, err := settings.Decode([]byte(fixtureYAML))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := snap.Value(location.MustParse("model.rules[].name"), nil); err == nil {
		t.Fatalf("expected error for missing index")
	}
	if _, err := snap.Value(location.MustParse("model.rules[].name"), location.Index{5}); err == nil {
		t.Fatalf("expected error for out of range index")
	}
}

func TestApplyLeavesOriginalUntouched(t *testing.T) {
	snap, err := settings.Decode([]byte(`{"model":{"rules":[{"name":"a"},{"name":"b"}]}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	name := location.MustParse("model.rules[].name")
	status := location.MustParse("model.status.text")

	result := updates.Result{
		Values: []updates.ValueUpdate{
			{Location: name, Values: []location.IndexedValue{{Index: location.Index{1}, Value: "B"}}},
			{Location: status, Values: []location.IndexedValue{{Index: location.Index{}, Value: "ready"}}},
		},
		UIStates: []updates.UIStateUpdate{
			{Location: name, Option: "hidden", Values: []location.IndexedValue{{Index: location.Index{0}, Value: true}}},
		},
	}

	applied, err := snap.Apply(result)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := map[string]any{
		"model": map[string]any{
			"rules":  []any{map[string]any{"name": "a"}, map[string]any{"name": "B"}},
			"status": map[string]any{"text": "ready"},
		},
	}
	if diff := cmp.Diff(want, applied.Sections()); diff != "" {
		t.Fatalf("applied settings mismatch (-want +got):\n%s", diff)
	}

	original, _ := snap.Value(name, location.Index{1})
	if original != "b" {
		t.Fatalf("expected original snapshot untouched, got %v", original)
	}
}

func TestDecodeRejectsScalarSection(t *testing.T) {
	if _, err := settings.Decode([]byte(`{"model": 3}`)); err == nil {
		t.Fatalf("expected error for scalar section")
	}
}
