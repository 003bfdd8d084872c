package session

import (
	"context"
	"errors"
	"fmt"
)

// ErrTaskCancelled is reported by Task.Wait when the task was interrupted. It
// wraps context.Canceled.
var ErrTaskCancelled = fmt.Errorf("session: task cancelled: %w", context.Canceled)

// TaskFunc is the body of a cancellable computation. It must watch ctx and
// return once ctx is done.
type TaskFunc func(ctx context.Context) (any, error)

// Task is one in-flight cancellable computation.
type Task struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
	value  any
	err    error
}

func startTask(parent context.Context, name string, fn TaskFunc) *Task {
	ctx, cancel := context.WithCancel(parent)
	task := &Task{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(task.done)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				task.value, task.err = nil, fmt.Errorf("session: task %q panicked: %v", name, r)
			}
		}()
		value, err := fn(ctx)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		if err != nil && errors.Is(err, context.Canceled) {
			err = ErrTaskCancelled
		}
		task.value, task.err = value, err
	}()
	return task
}

// Name returns the operation name the task was started with.
func (t *Task) Name() string { return t.name }

// Cancel interrupts the task. It is safe to call more than once.
func (t *Task) Cancel() { t.cancel() }

// Done is closed once the task body has returned.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx is done. An interrupted task
// reports ErrTaskCancelled.
func (t *Task) Wait(ctx context.Context) (any, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		t.cancel()
		<-t.done
		if t.err != nil {
			return nil, t.err
		}
		return nil, ctx.Err()
	}
}
