package report

import (
	"errors"
	"fmt"
)

// Errors returned by the lifecycle engine and review workflow. Handlers map
// them to HTTP statuses with errors.Is; ErrConflict is the only one callers
// are expected to retry (after re-reading the report).
var (
	ErrNotFound          = errors.New("report not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidState      = errors.New("operation not allowed in current state")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("role lacks permission")
	ErrConflict          = errors.New("report was modified concurrently")
)

// TransitionError names the rejected edge. It unwraps to ErrInvalidTransition.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
