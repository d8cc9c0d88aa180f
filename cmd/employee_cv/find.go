package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/employee-cv/internal/cv"
	"github.com/jonathan/employee-cv/internal/observability"
	"github.com/jonathan/employee-cv/internal/service"
)

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Look up one employee by id, name, email or phone",
	Long:  "Merges the feeds and finds the employee best matching the query, tolerating typos and partial input. Prints the unified record as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, cleanup, err := service.Setup(ctx, appConfig, service.Needs{})
	defer cleanup()
	if err != nil {
		return fmt.Errorf("failed to set up service: %w", err)
	}

	if _, err := svc.BuildUnifiedRecords(ctx); err != nil {
		return fmt.Errorf("failed to merge feeds: %w", err)
	}

	rec, ok := svc.FindEmployee(args[0])
	if !ok {
		return &cv.NotFoundError{Kind: "employee", Query: args[0]}
	}

	if verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintRecord(rec)
	}

	jsonBytes, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
	return nil
}
