// Package trigger identifies the events that cause providers to recompute:
// a field's value changing, a button click, or one of the dialog lifecycle
// events.
package trigger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/location"
)

// Lifecycle ids fired by the host around opening a node dialog.
const (
	BeforeOpenDialog = "before-open-dialog"
	AfterOpenDialog  = "after-open-dialog"
)

const (
	valuePrefix = "value:"
	idPrefix    = "id:"
)

// Signature is the comparable identity of a trigger. Execution plans are
// cached per signature.
type Signature string

// String returns the raw signature.
func (s Signature) String() string { return string(s) }

// Trigger is a sealed variant: ValueTrigger or IDTrigger.
type Trigger interface {
	Signature() Signature
	String() string
	isTrigger()
}

// ValueTrigger fires when the field at Scope changes value.
type ValueTrigger struct {
	Scope location.Location
}

// Value returns the trigger for a value change of the field at loc.
func Value(loc location.Location) ValueTrigger {
	return ValueTrigger{Scope: loc}
}

// ValueScope builds a ValueTrigger from a JSON-Forms scope string.
func ValueScope(scope string) (ValueTrigger, error) {
	loc, err := location.ParseScope(scope)
	if err != nil {
		return ValueTrigger{}, fmt.Errorf("trigger: %w", err)
	}
	return ValueTrigger{Scope: loc}, nil
}

// Signature implements Trigger.
func (t ValueTrigger) Signature() Signature {
	return Signature(valuePrefix + t.Scope.Key())
}

func (t ValueTrigger) String() string { return "value change of " + t.Scope.String() }

func (ValueTrigger) isTrigger() {}

// IDTrigger fires on a button click or a lifecycle event.
type IDTrigger struct {
	ID string
}

// ID returns the trigger for an id-keyed event.
func ID(id string) IDTrigger {
	return IDTrigger{ID: id}
}

// Button returns the trigger for a click on the button with the given
// reference name. Use CheckButton to reject refs that collide with lifecycle
// ids.
func Button(ref string) IDTrigger {
	return IDTrigger{ID: ref}
}

// IsLifecycle reports whether id is reserved for a dialog lifecycle event.
func IsLifecycle(id string) bool {
	return id == BeforeOpenDialog || id == AfterOpenDialog
}

// CheckButton reports whether ref can name a button.
func CheckButton(ref string) error {
	switch {
	case strings.TrimSpace(ref) == "":
		return errors.New("trigger: button ref is required")
	case IsLifecycle(ref):
		return fmt.Errorf("trigger: button ref %q is a reserved lifecycle id", ref)
	}
	return nil
}

// BeforeOpen is the trigger fired before the dialog opens.
func BeforeOpen() IDTrigger { return IDTrigger{ID: BeforeOpenDialog} }

// AfterOpen is the trigger fired once the dialog has opened.
func AfterOpen() IDTrigger { return IDTrigger{ID: AfterOpenDialog} }

// Signature implements Trigger.
func (t IDTrigger) Signature() Signature {
	return Signature(idPrefix + t.ID)
}

func (t IDTrigger) String() string { return "event " + t.ID }

func (IDTrigger) isTrigger() {}

// Parse reads a signature back into a Trigger.
func Parse(raw string) (Trigger, error) {
	trimmed := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(trimmed, valuePrefix):
		loc, err := location.Parse(strings.TrimPrefix(trimmed, valuePrefix))
		if err != nil {
			return nil, fmt.Errorf("trigger: %w", err)
		}
		return Value(loc), nil
	case strings.HasPrefix(trimmed, idPrefix):
		id := strings.TrimPrefix(trimmed, idPrefix)
		if id == "" {
			return nil, fmt.Errorf("trigger: empty id in %q", raw)
		}
		return ID(id), nil
	case strings.HasPrefix(trimmed, "#/"):
		return ValueScope(trimmed)
	case trimmed == "":
		return nil, fmt.Errorf("trigger: empty trigger")
	default:
		return ID(trimmed), nil
	}
}
