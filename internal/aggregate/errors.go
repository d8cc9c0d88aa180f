package aggregate

import "fmt"

// LoadError represents an error reading or decoding a source feed
type LoadError struct {
	Feed    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error: %s feed: %s: %v", e.Feed, e.Message, e.Cause)
	}
	return fmt.Sprintf("load error: %s feed: %s", e.Feed, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
