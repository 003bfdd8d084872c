package providers

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

type cancellable struct {
	name    string
	declare provider.DeclareFunc
	compute provider.ComputeFunc
}

// Cancellable runs compute as the dialog session's tracked task named name.
// Starting it cancels whatever the session was still running, and a
// CancelButton interrupts it. compute must watch its context; when it is
// interrupted the provider and its dependents keep their previous values.
// Without a session compute runs inline.
func Cancellable(name string, declare provider.DeclareFunc, compute provider.ComputeFunc) provider.Provider {
	return &cancellable{name: name, declare: declare, compute: compute}
}

func (c *cancellable) Declare(r provider.Recorder) error {
	if c.declare == nil {
		return nil
	}
	return c.declare(r)
}

func (c *cancellable) Compute(ctx context.Context, in provider.Inputs) (any, error) {
	s := in.Session()
	if s == nil {
		return c.compute(ctx, in)
	}
	return s.Run(ctx, c.name, func(taskCtx context.Context) (any, error) {
		return c.compute(taskCtx, in)
	})
}

type cancelButton struct {
	ref    string
	result any
}

// CancelButton interrupts the session's in-flight task when the button ref is
// clicked and outputs result, typically a status message.
func CancelButton(ref string, result any) provider.Provider {
	return &cancelButton{ref: ref, result: result}
}

func (c *cancelButton) Declare(r provider.Recorder) error {
	if err := trigger.CheckButton(c.ref); err != nil {
		return err
	}
	r.On(trigger.Button(c.ref))
	return nil
}

func (c *cancelButton) Compute(_ context.Context, in provider.Inputs) (any, error) {
	if s := in.Session(); s != nil {
		s.Cancel()
	}
	return c.result, nil
}
