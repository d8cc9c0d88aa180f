package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/employee-cv/internal/observability"
	"github.com/jonathan/employee-cv/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find the employees most similar to a free-text query",
	Long:  "Merges the feeds, builds the embedding index and prints the top-k matches with their similarity.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var (
	searchTopK int
	searchMode string
	searchJSON bool
)

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "Number of matches to return (default index.top_k)")
	searchCmd.Flags().StringVar(&searchMode, "mode", "", "Serialization mode: summary or detailed (default index.mode)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print matches as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := appConfig
	if searchMode != "" {
		cfg.Index.Mode = searchMode
	}

	svc, cleanup, err := service.Setup(ctx, cfg, service.Needs{Embedder: true})
	defer cleanup()
	if err != nil {
		return fmt.Errorf("failed to set up service: %w", err)
	}

	if _, err := svc.Reload(ctx); err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}

	topK := searchTopK
	if topK <= 0 {
		topK = svc.DefaultTopK()
	}
	matches, err := svc.Search(ctx, args[0], topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		jsonBytes, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal matches: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
		return nil
	}

	if len(matches) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No matches")
		return nil
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintMatches(args[0], matches)
	return nil
}
