// Package cv implements the per-employee CV draft, review and refine
// pipeline.
package cv

import "fmt"

// NotFoundError represents a lookup that matched no employee or pipeline
type NotFoundError struct {
	Kind  string
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %q", e.Kind, e.Query)
}

// ParseError represents a generation response that could not be turned into
// a valid document. The pipeline recovers from it and never returns it.
type ParseError struct {
	Step    string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error in %s: %s: %v", e.Step, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Step, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
