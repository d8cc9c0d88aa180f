package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/employee-cv/internal/schemas"
	rootschemas "github.com/jonathan/employee-cv/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON file against a schema",
	Long: `Validates a JSON document against one of the embedded schemas (cv, review_issues,
unified_records) or against a schema file on disk.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var (
	validateSchema string
	validateJSON   string
)

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Embedded schema name or path to a JSON Schema file (required)")
	validateCmd.Flags().StringVar(&validateJSON, "json", "", "Path to the JSON file to validate (required)")

	if err := validateCmd.MarkFlagRequired("schema"); err != nil {
		panic(fmt.Sprintf("failed to mark schema flag as required: %v", err))
	}
	if err := validateCmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var err error
	if name, ok := embeddedSchemaName(validateSchema); ok {
		var data []byte
		data, err = os.ReadFile(validateJSON)
		if err != nil {
			return fmt.Errorf("failed to read JSON file: %w", err)
		}
		err = schemas.Validate(name, string(data))
	} else {
		err = schemas.ValidateJSON(validateSchema, validateJSON)
	}

	if err != nil {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Validation failed")
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
	return nil
}

// embeddedSchemaName maps a short name such as "cv" to its embedded file
func embeddedSchemaName(s string) (string, bool) {
	for _, name := range rootschemas.Names() {
		if s == name || s+".schema.json" == name {
			return name, true
		}
	}
	return "", false
}
