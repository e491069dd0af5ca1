package core

import (
	"errors"
	"fmt"
)

// Session lifecycle errors returned by the workflow driver.
var (
	// ErrSessionNotStarted is returned when Submit is called before Start.
	ErrSessionNotStarted = errors.New("session not started")
	// ErrSessionEnded is returned when Submit is called after End.
	ErrSessionEnded = errors.New("session ended")
)

// CapabilityError reports a failure of an external capability (the reasoning
// service or a tool backend). It is the only failure class that surfaces from
// a submitted turn: classification trouble and specialist declines are
// absorbed by the fallback path instead.
type CapabilityError struct {
	// Op names the failed operation, e.g. "supervisor.route" or
	// "specialist.billing.reason".
	Op  string
	Err error
}

// Error implements the error interface.
func (e *CapabilityError) Error() string { return fmt.Sprintf("capability %s: %v", e.Op, e.Err) }

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *CapabilityError) Unwrap() error { return e.Err }

// NewCapabilityError wraps err as a CapabilityError for operation op.
func NewCapabilityError(op string, err error) *CapabilityError {
	return &CapabilityError{Op: op, Err: err}
}
