// Package schemas embeds the JSON Schemas for the documents the service
// produces and accepts.
package schemas

import (
	"embed"
	"fmt"
)

//go:embed *.schema.json
var files embed.FS

// Schema file names
const (
	CV             = "cv.schema.json"
	ReviewIssues   = "review_issues.schema.json"
	UnifiedRecords = "unified_records.schema.json"
)

// Load returns the content of an embedded schema file
func Load(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("schema %s not found: %w", name, err)
	}
	return string(data), nil
}

// Names lists every embedded schema file
func Names() []string {
	return []string{CV, ReviewIssues, UnifiedRecords}
}
