// Package collab holds the error contract shared by the external
// collaborators (generation and embedding services).
package collab

import (
	"context"
	"errors"
	"fmt"
)

// CallError represents a failed call to an external collaborator
type CallError struct {
	Service string
	Op      string
	Message string
	Timeout bool
	Cause   error
}

func (e *CallError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Service, e.Op)
	if e.Timeout {
		msg = fmt.Sprintf("%s %s timed out", e.Service, e.Op)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *CallError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the caller may retry the call. Collaborator
// failures are transport-level, so they always are.
func (e *CallError) Retryable() bool {
	return true
}

// Wrap converts err from a collaborator call into a *CallError. Deadline
// expiry on ctx marks the error as a timeout. Errors that already are a
// *CallError pass through unchanged.
func Wrap(ctx context.Context, service, op string, err error) error {
	if err == nil {
		return nil
	}
	var callErr *CallError
	if errors.As(err, &callErr) {
		return err
	}
	timeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
	return &CallError{
		Service: service,
		Op:      op,
		Timeout: timeout,
		Cause:   err,
	}
}

// IsTimeout reports whether err is a collaborator timeout
func IsTimeout(err error) bool {
	var callErr *CallError
	return errors.As(err, &callErr) && callErr.Timeout
}
