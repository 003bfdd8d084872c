package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/internal/ctxlog"
	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/settings"
	"github.com/goliatone/go-formflow/pkg/trigger"
	"github.com/goliatone/go-formflow/pkg/updates"
)

const (
	actionEdit = "Edit a setting"
	actionShow = "Show settings"
	actionQuit = "Quit"
)

// Runner drives one dialog interactively: it lets the user fire triggers or
// edit settings, prints the resulting updates and applies value updates to
// its settings snapshot.
type Runner struct {
	engine        *engine.Engine
	snapshot      *settings.Snapshot
	driver        PromptDriver
	session       *session.Session
	dialogContext any
	logger        *slog.Logger
	autoApply     bool
}

// NewRunner builds a runner over the engine and the initial settings.
func NewRunner(e *engine.Engine, snapshot *settings.Snapshot, opts ...Option) (*Runner, error) {
	if e == nil {
		return nil, errors.New("simulate: engine is required")
	}
	if snapshot == nil {
		snapshot = settings.New(nil)
	}
	r := &Runner{
		engine:   e,
		snapshot: snapshot,
		session:  session.New(),
		logger:   ctxlog.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Snapshot returns the current settings.
func (r *Runner) Snapshot() *settings.Snapshot { return r.snapshot }

// Run opens the dialog and loops until the user quits. Aborting a prompt ends
// the loop without error.
func (r *Runner) Run(ctx context.Context) error {
	ctx = ctxlog.Ensure(ctx, r.logger)
	defer r.session.Cancel()

	if err := r.Fire(ctx, trigger.BeforeOpen(), nil); err != nil {
		return err
	}
	if err := r.Fire(ctx, trigger.AfterOpen(), nil); err != nil {
		return err
	}

	for {
		err := r.step(ctx)
		switch {
		case errors.Is(err, errQuit), errors.Is(err, ErrAborted):
			return nil
		case err != nil:
			return err
		}
	}
}

var errQuit = errors.New("simulate: quit")

func (r *Runner) step(ctx context.Context) error {
	triggers := r.engine.Triggers()
	options := make([]string, 0, len(triggers)+3)
	for _, t := range triggers {
		options = append(options, "Fire "+t.String())
	}
	options = append(options, actionEdit, actionShow, actionQuit)

	choice, err := r.driver.Select(ctx, SelectConfig{Message: "Next action", Options: options, PageSize: 15})
	if err != nil {
		return err
	}
	switch {
	case choice < 0 || choice >= len(options):
		return fmt.Errorf("simulate: invalid choice %d", choice)
	case choice < len(triggers):
		t := triggers[choice]
		indices, err := r.askIndices(ctx, t)
		if err != nil {
			return err
		}
		return r.Fire(ctx, t, indices)
	}

	switch options[choice] {
	case actionEdit:
		return r.edit(ctx)
	case actionShow:
		return r.show(ctx)
	default:
		return errQuit
	}
}

// Fire runs one trigger against the current settings, prints the updates and
// applies value updates.
func (r *Runner) Fire(ctx context.Context, t trigger.Trigger, indices location.Index) error {
	result, err := r.engine.Fire(ctx, t, r.snapshot,
		engine.WithIndices(indices...),
		engine.WithContext(r.dialogContext),
		engine.WithSession(r.session),
	)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("simulate: fired",
		slog.String("trigger", string(t.Signature())),
		slog.Int("values", len(result.Values)),
		slog.Int("uiStates", len(result.UIStates)),
	)
	if result.Empty() {
		return r.driver.Info(ctx, fmt.Sprintf("%s: no updates", t))
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("simulate: encode result: %w", err)
	}
	if err := r.driver.Info(ctx, fmt.Sprintf("%s:\n%s", t, payload)); err != nil {
		return err
	}
	return r.apply(ctx, result)
}

func (r *Runner) apply(ctx context.Context, result updates.Result) error {
	if len(result.Values) == 0 {
		return nil
	}
	if !r.autoApply {
		ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Apply value updates to the settings?", Default: true})
		if err != nil || !ok {
			return err
		}
	}
	next, err := r.snapshot.Apply(result)
	if err != nil {
		return err
	}
	r.snapshot = next
	return nil
}

func (r *Runner) askIndices(ctx context.Context, t trigger.Trigger) (location.Index, error) {
	if vt, ok := t.(trigger.ValueTrigger); ok && vt.Scope.Depth() == 0 {
		return nil, nil
	}
	raw, err := r.driver.Input(ctx, InputConfig{
		Message:   "Indices (comma separated, empty for all)",
		Validator: func(s string) error { _, err := ParseIndices(s); return err },
	})
	if err != nil {
		return nil, err
	}
	return ParseIndices(raw)
}

func (r *Runner) edit(ctx context.Context) error {
	rawLoc, err := r.driver.Input(ctx, InputConfig{
		Message: "Field location (for example model.rules[].enabled)",
		Validator: func(s string) error {
			_, err := location.Parse(s)
			return err
		},
	})
	if err != nil {
		return err
	}
	loc, err := location.Parse(rawLoc)
	if err != nil {
		return err
	}

	var idx location.Index
	if loc.Depth() > 0 {
		rawIdx, err := r.driver.Input(ctx, InputConfig{
			Message: fmt.Sprintf("Element indices (%d)", loc.Depth()),
			Validator: func(s string) error {
				parsed, err := ParseIndices(s)
				if err == nil && len(parsed) != loc.Depth() {
					err = fmt.Errorf("expected %d indices", loc.Depth())
				}
				return err
			},
		})
		if err != nil {
			return err
		}
		if idx, err = ParseIndices(rawIdx); err != nil {
			return err
		}
	}

	rawValue, err := r.driver.Input(ctx, InputConfig{Message: "New value (JSON, or plain text)"})
	if err != nil {
		return err
	}
	next, err := r.snapshot.With(loc, idx, ParseValue(rawValue))
	if err != nil {
		return r.driver.Info(ctx, err.Error())
	}
	r.snapshot = next

	return r.Fire(ctx, trigger.Value(loc), idx)
}

func (r *Runner) show(ctx context.Context) error {
	payload, err := json.MarshalIndent(r.snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("simulate: encode settings: %w", err)
	}
	return r.driver.Info(ctx, string(payload))
}

// ParseIndices reads a comma separated list of non-negative integers. An
// empty string yields no indices.
func ParseIndices(raw string) (location.Index, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.Split(trimmed, ",")
	out := make(location.Index, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || value < 0 {
			return nil, fmt.Errorf("simulate: invalid index %q", part)
		}
		out = append(out, value)
	}
	return out, nil
}

// ParseValue decodes raw as JSON and falls back to the plain string.
func ParseValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value
	}
	return raw
}
