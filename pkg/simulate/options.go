package simulate

import (
	"log/slog"

	"github.com/goliatone/go-formflow/pkg/session"
)

// Option configures a Runner.
type Option func(*Runner)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithDialogContext sets the ambient value handed to providers, such as the
// upstream column names.
func WithDialogContext(value any) Option {
	return func(r *Runner) {
		r.dialogContext = value
	}
}

// WithSession reuses an existing dialog session.
func WithSession(s *session.Session) Option {
	return func(r *Runner) {
		if s != nil {
			r.session = s
		}
	}
}

// WithLogger sets the logger used for fire diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithoutApplyPrompt applies value updates without asking.
func WithoutApplyPrompt() Option {
	return func(r *Runner) {
		r.autoApply = true
	}
}
