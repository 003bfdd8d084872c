package engine

import (
	"log/slog"
)

// Option customises the engine configuration.
type Option func(*Engine)

// WithLogger sets the logger used when the invocation context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLazyPlans defers plan construction to the first invocation of each
// trigger.
func WithLazyPlans() Option {
	return func(e *Engine) {
		e.lazy = true
	}
}

// WithSanitizedOptions strips markup from the string values of the named UI
// options before they are returned.
func WithSanitizedOptions(names ...string) Option {
	return func(e *Engine) {
		e.sanitized = append(e.sanitized, names...)
	}
}
