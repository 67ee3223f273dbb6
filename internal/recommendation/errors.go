package recommendation

import (
	"errors"
	"fmt"
)

// ErrInvalidAction matches every *InvalidActionError through errors.Is.
var ErrInvalidAction = errors.New("invalid action")

// InvalidActionError reports an action id that is not in the catalog.
type InvalidActionError struct {
	ActionID string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %q: not in catalog", e.ActionID)
}

func (e *InvalidActionError) Is(target error) bool {
	return target == ErrInvalidAction
}
