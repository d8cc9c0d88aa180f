package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/employee-cv/internal/observability"
	"github.com/jonathan/employee-cv/internal/schemas"
	"github.com/jonathan/employee-cv/internal/service"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge the source feeds into unified records",
	Long:  "Loads the HRM, xOPS and custom feeds, reconciles them into unified records, validates the result against the unified records schema and writes it as JSON.",
	Args:  cobra.NoArgs,
	RunE:  runMerge,
}

var (
	mergeOutputFile string
	mergeSave       bool
)

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutputFile, "out", "o", "", "Path to output JSON file (default stdout)")
	mergeCmd.Flags().BoolVar(&mergeSave, "save", false, "Persist the merge run to the database")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	svc, cleanup, err := service.Setup(ctx, appConfig, service.Needs{SaveRuns: mergeSave})
	defer cleanup()
	if err != nil {
		return fmt.Errorf("failed to set up service: %w", err)
	}

	records, err := svc.BuildUnifiedRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to merge feeds: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal unified records: %w", err)
	}
	if err := schemas.ValidateUnifiedRecords(string(jsonBytes)); err != nil {
		return fmt.Errorf("merged records failed validation: %w", err)
	}

	if verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintMergeSummary(records)
	}

	if mergeOutputFile == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(mergeOutputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(mergeOutputFile, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Merged %d records\n", len(records))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", mergeOutputFile)
	return nil
}
