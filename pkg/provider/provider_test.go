package provider_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/session"
)

func values(raw ...any) []location.IndexedValue {
	out := make([]location.IndexedValue, len(raw))
	for idx, value := range raw {
		out[idx] = location.IndexedValue{Index: location.Index{idx}, Value: value}
	}
	return out
}

func TestReducers(t *testing.T) {
	cases := []struct {
		name    string
		reducer provider.Reducer
		in      []location.IndexedValue
		want    any
	}{
		{"any true", provider.AnyTrue, values(false, true), true},
		{"any none", provider.AnyTrue, values(false, "true"), false},
		{"any empty", provider.AnyTrue, nil, false},
		{"all true", provider.AllTrue, values(true, true), true},
		{"all mixed", provider.AllTrue, values(true, nil), false},
		{"all empty", provider.AllTrue, nil, true},
		{"first", provider.First, values("a", "b"), "a"},
		{"first empty", provider.First, nil, nil},
		{"collect", provider.Collect, values(1, "x"), []any{1, "x"}},
		{"count", provider.Count, values(1, 2, 3), 3},
	}
	for _, tc := range cases {
		got, err := tc.reducer(tc.in)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestIsCancelled(t *testing.T) {
	cases := map[error]bool{
		provider.ErrCancelled:                            true,
		fmt.Errorf("wrapped: %w", provider.ErrCancelled): true,
		context.Canceled:                                 true,
		session.ErrTaskCancelled:                         true,
		context.DeadlineExceeded:                         false,
		fmt.Errorf("boom"):                               false,
		nil:                                              false,
	}
	for err, want := range cases {
		if got := provider.IsCancelled(err); got != want {
			t.Fatalf("IsCancelled(%v) = %v, want %v", err, got, want)
		}
	}
}

func TestFuncIsNilSafe(t *testing.T) {
	var f *provider.Func
	if err := f.Declare(nil); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	value, err := provider.New(nil, nil).Compute(context.Background(), nil)
	if err != nil || value != nil {
		t.Fatalf("Compute = %v, %v", value, err)
	}
}

func TestRegistryDefaultIDs(t *testing.T) {
	reg := provider.NewRegistry()
	status := location.MustParse("model.status")
	name := location.MustParse("model.rules[].name")

	ids := []provider.ID{
		reg.Value(status, provider.New(nil, nil)),
		reg.UIState(name, "hidden", provider.New(nil, nil)),
		reg.UIState(status, "status", provider.New(nil, nil), provider.WithID("custom")),
		reg.State("intermediate", provider.New(nil, nil)),
	}
	want := []provider.ID{"value:model.status", "ui:model.rules[].name#hidden", "custom", "intermediate"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	entries := reg.Entries()
	if len(entries) != 4 || reg.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[1].Target.Kind != provider.TargetUIState || entries[1].Target.Option != "hidden" {
		t.Fatalf("unexpected target %+v", entries[1].Target)
	}
	if entries[3].Target.Kind != provider.TargetNone {
		t.Fatalf("state providers have no target")
	}

	var empty *provider.Registry
	if empty.Len() != 0 || empty.Entries() != nil {
		t.Fatalf("nil registry should be empty")
	}
}
