package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/employee-cv/internal/cv"
	"github.com/jonathan/employee-cv/internal/observability"
	"github.com/jonathan/employee-cv/internal/service"
)

var cvCmd = &cobra.Command{
	Use:   "cv <query>",
	Short: "Draft, review and refine a CV for one employee",
	Long: `Finds the employee matching the query, drafts a CV, optionally reviews and refines it,
then applies each --feedback item in order. Prints the final CV as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runCV,
}

var (
	cvFeedback   []string
	cvSkipReview bool
	cvOutputFile string
)

func init() {
	cvCmd.Flags().StringArrayVarP(&cvFeedback, "feedback", "f", nil, "Feedback to apply after the first pass (repeatable, applied in order)")
	cvCmd.Flags().BoolVar(&cvSkipReview, "skip-review", false, "Skip the review and refine pass")
	cvCmd.Flags().StringVarP(&cvOutputFile, "out", "o", "", "Path to output CV JSON file (default stdout)")
	rootCmd.AddCommand(cvCmd)
}

func runCV(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, cleanup, err := service.Setup(ctx, appConfig, service.Needs{LLM: true})
	defer cleanup()
	if err != nil {
		return fmt.Errorf("failed to set up service: %w", err)
	}

	if _, err := svc.BuildUnifiedRecords(ctx); err != nil {
		return fmt.Errorf("failed to merge feeds: %w", err)
	}

	draft, err := runCVPipeline(ctx, svc, args[0], cvSkipReview, cvFeedback)
	if err != nil {
		return err
	}

	if verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintIssues(draft.Issues)
		printer.PrintDraft(&draft)
	}

	jsonBytes, err := json.MarshalIndent(draft.CV, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal CV: %w", err)
	}

	if cvOutputFile == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cvOutputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(cvOutputFile, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", cvOutputFile)
	return nil
}

// runCVPipeline drives one pipeline through draft, the optional review and
// refine pass, and each feedback item.
func runCVPipeline(ctx context.Context, svc *service.Service, query string, skipReview bool, feedback []string) (cv.Draft, error) {
	p, err := svc.StartPipeline(ctx, query)
	if err != nil {
		return cv.Draft{}, err
	}

	draft := p.Snapshot()
	if !skipReview {
		if draft, err = p.Review(ctx); err != nil {
			return cv.Draft{}, fmt.Errorf("review failed: %w", err)
		}
		if draft, err = p.Refine(ctx); err != nil {
			return cv.Draft{}, fmt.Errorf("refine failed: %w", err)
		}
	}

	for _, item := range feedback {
		if draft, err = p.AddFeedback(ctx, item); err != nil {
			return cv.Draft{}, fmt.Errorf("failed to apply feedback %q: %w", item, err)
		}
	}
	return draft, nil
}
