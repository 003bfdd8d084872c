package trigger

import (
	"testing"

	"github.com/goliatone/go-formflow/pkg/location"
)

func TestSignatures(t *testing.T) {
	cases := []struct {
		trigger Trigger
		want    Signature
	}{
		{Value(location.MustParse("model.rules[].enabled")), "value:model.rules[].enabled"},
		{Button("refresh"), "id:refresh"},
		{BeforeOpen(), "id:before-open-dialog"},
		{AfterOpen(), "id:after-open-dialog"},
	}
	for _, tc := range cases {
		if got := tc.trigger.Signature(); got != tc.want {
			t.Fatalf("Signature() = %q, want %q", got, tc.want)
		}
	}
	if Button("x").Signature() != ID("x").Signature() {
		t.Fatalf("buttons and id triggers share the id namespace")
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, tr := range []Trigger{
		Value(location.MustParse("model.mode")),
		Value(location.MustParse("model.rules[].subs[].x")),
		BeforeOpen(),
		Button("cancel"),
	} {
		parsed, err := Parse(string(tr.Signature()))
		if err != nil {
			t.Fatalf("Parse(%q): %v", tr.Signature(), err)
		}
		if parsed.Signature() != tr.Signature() {
			t.Fatalf("Parse(%q) = %q", tr.Signature(), parsed.Signature())
		}
	}
}

func TestParseShorthands(t *testing.T) {
	scoped, err := Parse("#/properties/model/properties/rules/items/properties/enabled")
	if err != nil {
		t.Fatalf("Parse scope: %v", err)
	}
	if scoped.Signature() != "value:model.rules[].enabled" {
		t.Fatalf("scope parsed to %q", scoped.Signature())
	}

	bare, err := Parse(" before-open-dialog ")
	if err != nil {
		t.Fatalf("Parse bare id: %v", err)
	}
	if bare.Signature() != BeforeOpen().Signature() {
		t.Fatalf("bare id parsed to %q", bare.Signature())
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "id:", "value:", "value:model..x", "#/items"} {
		if _, err := Parse(raw); err == nil {
			t.Fatalf("Parse(%q) expected error", raw)
		}
	}
}

func TestStrings(t *testing.T) {
	if got := Value(location.MustParse("model.mode")).String(); got != "value change of model.mode" {
		t.Fatalf("String() = %q", got)
	}
	if got := Button("go").String(); got != "event go" {
		t.Fatalf("String() = %q", got)
	}
}

func TestCheckButton(t *testing.T) {
	if err := CheckButton("cancel"); err != nil {
		t.Fatalf("CheckButton(cancel): %v", err)
	}
	for _, ref := range []string{"", "  ", BeforeOpenDialog, AfterOpenDialog} {
		if err := CheckButton(ref); err == nil {
			t.Fatalf("CheckButton(%q) succeeded, want error", ref)
		}
	}
	if !IsLifecycle(AfterOpenDialog) || IsLifecycle("cancel") {
		t.Fatalf("IsLifecycle misclassifies ids")
	}
}
