package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by stores and services. Handlers map them to HTTP
// statuses; the raw cause of an external failure is logged, never returned.
var (
	ErrNotFound         = errors.New("not found")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")
)

// PreconditionError reports a rejected state transition or a mutation
// attempted outside its allowed lifecycle window.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

// Preconditionf builds a PreconditionError with a formatted reason.
func Preconditionf(format string, args ...any) error {
	return &PreconditionError{Reason: fmt.Sprintf(format, args...)}
}

// IsPrecondition reports whether err is a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
