package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/schematree"
	"github.com/goliatone/go-formflow/pkg/settings"
	"github.com/goliatone/go-formflow/pkg/updates"
)

// RulesSection is the section name used by RulesTree.
const RulesSection = "model"

// RulesTree returns the schema shared by engine tests:
//
//	model.mode
//	model.threshold
//	model.status
//	model.rules[].enabled
//	model.rules[].name
//	model.rules[].subs[].x
//	model.flags[].on
func RulesTree(t testing.TB) *schematree.Tree {
	t.Helper()

	tree, err := schematree.New(schematree.Section{
		Name: RulesSection,
		Fields: []schematree.Spec{
			schematree.Leaf("mode"),
			schematree.Leaf("threshold"),
			schematree.Leaf("status"),
			schematree.Array("rules",
				schematree.Leaf("enabled"),
				schematree.Leaf("name"),
				schematree.Array("subs", schematree.Leaf("x")),
			),
			schematree.Array("flags", schematree.Leaf("on")),
		},
	})
	if err != nil {
		t.Fatalf("build rules tree: %v", err)
	}
	return tree
}

// Loc parses a compact location, failing the test on malformed input.
func Loc(t testing.TB, raw string) location.Location {
	t.Helper()
	loc, err := location.Parse(raw)
	if err != nil {
		t.Fatalf("parse location %q: %v", raw, err)
	}
	return loc
}

// Snapshot decodes JSON or YAML settings.
func Snapshot(t testing.TB, raw string) *settings.Snapshot {
	t.Helper()
	snap, err := settings.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	return snap
}

// LoadSnapshot reads a settings fixture without requiring testing.T.
func LoadSnapshot(path string) (*settings.Snapshot, error) {
	if path == "" {
		return nil, errors.New("testsupport: settings path is required")
	}
	snap, err := settings.Load(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: %w", err)
	}
	return snap, nil
}

// resultOptions are the cmp options used to compare results: a nil and an
// empty index are the same element combination.
func resultOptions() cmp.Options {
	return cmp.Options{cmpopts.EquateEmpty()}
}

// AssertValues fails when got differs from want.
func AssertValues(t testing.TB, want, got []location.IndexedValue) {
	t.Helper()
	if diff := cmp.Diff(want, got, resultOptions()...); diff != "" {
		t.Fatalf("indexed values mismatch (-want +got):\n%s", diff)
	}
}

// AssertResult fails when got differs from want.
func AssertResult(t testing.TB, want, got updates.Result) {
	t.Helper()
	if diff := cmp.Diff(want, got, resultOptions()...); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

// Counter wraps a provider and counts Compute calls per element combination.
type Counter struct {
	provider.Provider

	mu    sync.Mutex
	calls map[string]int
	total int
}

// Count wraps p.
func Count(p provider.Provider) *Counter {
	return &Counter{Provider: p, calls: make(map[string]int)}
}

// Compute records the call and delegates.
func (c *Counter) Compute(ctx context.Context, in provider.Inputs) (any, error) {
	c.mu.Lock()
	c.calls[in.Index().Key()]++
	c.total++
	c.mu.Unlock()
	return c.Provider.Compute(ctx, in)
}

// Total reports every Compute call.
func (c *Counter) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// At reports Compute calls for idx.
func (c *Counter) At(idx location.Index) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[idx.Key()]
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
