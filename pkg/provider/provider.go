package provider

import (
	"context"
	"errors"
)

// ErrCancelled is returned by Compute when the computation was aborted
// cooperatively. The provider and everything depending on it keep their
// previous values for the current invocation; the invocation itself succeeds.
var ErrCancelled = errors.New("provider: computation cancelled")

// ID names a provider within one form.
type ID string

// Provider computes a value from declared dependencies.
type Provider interface {
	// Declare records triggers and dependencies. It must not perform real
	// computation.
	Declare(r Recorder) error
	// Compute produces the provider's output for one element combination.
	Compute(ctx context.Context, in Inputs) (any, error)
}

// DeclareFunc is the declaration phase of a Func provider.
type DeclareFunc func(r Recorder) error

// ComputeFunc is the computation phase of a Func provider.
type ComputeFunc func(ctx context.Context, in Inputs) (any, error)

// Func adapts a pair of functions into a Provider.
type Func struct {
	DeclareFn DeclareFunc
	ComputeFn ComputeFunc
}

// New builds a Func provider.
func New(declare DeclareFunc, compute ComputeFunc) *Func {
	return &Func{DeclareFn: declare, ComputeFn: compute}
}

// Declare calls the wrapped declaration function when set.
func (f *Func) Declare(r Recorder) error {
	if f == nil || f.DeclareFn == nil {
		return nil
	}
	return f.DeclareFn(r)
}

// Compute calls the wrapped computation, returning nil when unset.
func (f *Func) Compute(ctx context.Context, in Inputs) (any, error) {
	if f == nil || f.ComputeFn == nil {
		return nil, nil
	}
	return f.ComputeFn(ctx, in)
}

// IsCancelled reports whether err is a cooperative cancellation signal rather
// than a fault.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
