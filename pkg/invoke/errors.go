package invoke

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
)

// ErrFault matches every FaultError through errors.Is.
var ErrFault = errors.New("invoke: computation fault")

// FaultError aborts an invocation: a provider failed with something other
// than a cancellation, or the state it needed could not be read.
type FaultError struct {
	Provider provider.ID
	Index    location.Index
	Err      error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("invoke: provider %q failed at %s: %v", e.Provider, e.Index, e.Err)
}

// Is makes errors.Is(err, ErrFault) hold.
func (e *FaultError) Is(target error) bool {
	return target == ErrFault
}

func (e *FaultError) Unwrap() error {
	return e.Err
}
