// Package prompts provides a loader for externalized LLM prompt templates.
// Prompts are stored as JSON files and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// placeholder matches {{.Key}} template fields
var placeholder = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9_]*)\}\}`)

// cache stores parsed prompt files by name
var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// MissingFieldsError is returned by Render when data leaves template fields unfilled
type MissingFieldsError struct {
	File   string
	Key    string
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("prompt %s/%s: missing fields %s", e.File, e.Key, strings.Join(e.Fields, ", "))
}

// Get retrieves a prompt template by filename (e.g. "cv.json") and key
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// Format replaces template placeholders in the form {{.Key}} with values from data.
// Replacement is a single pass, so values that themselves contain
// placeholders are inserted verbatim.
func Format(template string, data map[string]string) string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		pairs = append(pairs, "{{."+key+"}}", data[key])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Placeholders returns the field names a template uses, sorted and deduplicated
func Placeholders(template string) []string {
	var fields []string
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		fields = append(fields, m[1])
	}
	sort.Strings(fields)
	return slices.Compact(fields)
}

// Render loads a prompt and fills its placeholders. Every field the template
// uses must be present in data.
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}

	var missing []string
	for _, field := range Placeholders(template) {
		if _, ok := data[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return "", &MissingFieldsError{File: filename, Key: key, Fields: missing}
	}
	return Format(template, data), nil
}

// List returns the prompt keys of a file in sorted order
func List(filename string) ([]string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	prompts, ok := cache[filename]
	cacheMu.RUnlock()
	if ok {
		return prompts, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()
	return prompts, nil
}
