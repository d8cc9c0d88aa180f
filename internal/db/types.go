package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Feed names one of the three source feed tables
type Feed string

// Source feeds
const (
	FeedHRM    Feed = "hrm"
	FeedXOPS   Feed = "xops"
	FeedCustom Feed = "custom"
)

// Table returns the table holding the feed's documents
func (f Feed) Table() (string, error) {
	switch f {
	case FeedHRM:
		return "hrm_records", nil
	case FeedXOPS:
		return "xops_records", nil
	case FeedCustom:
		return "custom_records", nil
	}
	return "", fmt.Errorf("unknown feed %q", string(f))
}

// MergeRun is a stored snapshot of a merge result
type MergeRun struct {
	ID          uuid.UUID `json:"id"`
	RecordCount int       `json:"record_count"`
	CreatedAt   time.Time `json:"created_at"`
}
