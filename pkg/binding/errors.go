package binding

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/provider"
)

// ErrConfiguration matches every ConfigError through errors.Is.
var ErrConfiguration = errors.New("binding: invalid provider configuration")

// ConfigError reports a provider declaration that cannot be bound to the
// schema.
type ConfigError struct {
	Provider provider.ID
	Reason   string
	Err      error
}

func (e *ConfigError) Error() string {
	msg := "binding: "
	if e.Provider != "" {
		msg += fmt.Sprintf("provider %q: ", e.Provider)
	}
	msg += e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrConfiguration) hold.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErr(id provider.ID, format string, args ...any) *ConfigError {
	return &ConfigError{Provider: id, Reason: fmt.Sprintf(format, args...)}
}
