package plan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

// ErrCycle matches every CycleError through errors.Is.
var ErrCycle = errors.New("plan: cyclic dependency")

// CycleError names the providers forming a cycle reachable from a trigger.
// Chain starts and ends with the same provider.
type CycleError struct {
	Trigger trigger.Signature
	Chain   []provider.ID
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Chain))
	for idx, id := range e.Chain {
		parts[idx] = string(id)
	}
	return fmt.Sprintf("plan: cyclic dependency for trigger %s: %s", e.Trigger, strings.Join(parts, " -> "))
}

// Is makes errors.Is(err, ErrCycle) hold.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}
