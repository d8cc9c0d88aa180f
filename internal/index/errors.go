package index

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyIndex is returned when an index is built from zero records
	ErrEmptyIndex = errors.New("no records to index")
	// ErrUninitializedIndex is returned when the index is queried before any build
	ErrUninitializedIndex = errors.New("index has not been built")
)

// DimensionMismatchError represents vectors of differing dimensionality
type DimensionMismatchError struct {
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

// UnknownModeError represents an unsupported serialization mode
type UnknownModeError struct {
	Mode Mode
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown serialization mode %q", string(e.Mode))
}
