package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Session is the handle of one open dialog instance. It owns at most one
// outstanding cancellable task.
type Session struct {
	id string

	mu      sync.Mutex
	current *Task
}

// New creates a session with a fresh random id.
func New() *Session {
	return &Session{id: uuid.NewString()}
}

// WithID creates a session for an id assigned by the host.
func WithID(id string) *Session {
	return &Session{id: id}
}

// ID returns the dialog instance id.
func (s *Session) ID() string { return s.id }

// Start runs fn on a new background task, cancelling and clearing any task
// still in flight for this session.
func (s *Session) Start(ctx context.Context, name string, fn TaskFunc) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Cancel()
		s.current = nil
	}
	task := startTask(context.WithoutCancel(ctx), name, fn)
	s.current = task
	return task
}

// Run starts fn and waits for it, clearing the task once it completes.
func (s *Session) Run(ctx context.Context, name string, fn TaskFunc) (any, error) {
	task := s.Start(ctx, name, fn)
	value, err := task.Wait(ctx)
	s.clear(task)
	return value, err
}

// Cancel interrupts the in-flight task, if any, and reports whether one was
// running.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false
	}
	s.current.Cancel()
	s.current = nil
	return true
}

// Current returns the in-flight task, if any.
func (s *Session) Current() (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != nil
}

func (s *Session) clear(task *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == task {
		s.current = nil
	}
}
