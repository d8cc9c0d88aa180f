// Package schemas provides JSON Schema validation for the documents the
// service produces and accepts.
package schemas

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	rootschemas "github.com/jonathan/employee-cv/schemas"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// compiled caches embedded schemas by file name
var (
	compiled   = make(map[string]*gojsonschema.Schema)
	compiledMu sync.Mutex
)

func embeddedSchema(name string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if schema, ok := compiled[name]; ok {
		return schema, nil
	}

	content, err := rootschemas.Load(name)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "embedded schema missing", Cause: err}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema failed to compile", Cause: err}
	}

	compiled[name] = schema
	return schema, nil
}

// Validate validates JSON content against one of the embedded schemas
func Validate(name, jsonContent string) error {
	schema, err := embeddedSchema(name)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	return toValidationError(result)
}

// ValidateCV validates a CV document
func ValidateCV(jsonContent string) error {
	return Validate(rootschemas.CV, jsonContent)
}

// ValidateReviewIssues validates a review issue list
func ValidateReviewIssues(jsonContent string) error {
	return Validate(rootschemas.ReviewIssues, jsonContent)
}

// ValidateUnifiedRecords validates a list of unified records
func ValidateUnifiedRecords(jsonContent string) error {
	return Validate(rootschemas.UnifiedRecords, jsonContent)
}

// ValidateJSON validates a JSON file against a JSON Schema file. Relative
// $ref entries in the schema resolve against the schema's own directory.
func ValidateJSON(schemaPath, jsonPath string) error {
	schemaURL, err := fileURL("schema", schemaPath)
	if err != nil {
		return err
	}
	documentURL, err := fileURL("JSON", jsonPath)
	if err != nil {
		return err
	}

	return validateLoaded(schemaPath,
		gojsonschema.NewReferenceLoader(schemaURL),
		gojsonschema.NewReferenceLoader(documentURL))
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	return validateLoaded("(string schema)",
		gojsonschema.NewStringLoader(schemaContent),
		gojsonschema.NewStringLoader(jsonContent))
}

// fileURL resolves path to a file:// reference, failing early with a
// readable message when the file is absent.
func fileURL(kind, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s path: %w", kind, err)
	}
	if _, err := os.Stat(abs); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s file not found: %s", kind, abs)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// validateLoaded runs one validation. Failures to read or compile either
// side surface as SchemaLoadError; schema violations as ValidationError.
func validateLoaded(source string, schema, document gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schema, document)
	if err != nil {
		return &SchemaLoadError{Path: source, Message: "could not load schema or document", Cause: err}
	}
	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
