package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/employee-cv/internal/logger"
	"github.com/jonathan/employee-cv/internal/server"
	"github.com/jonathan/employee-cv/internal/server/ratelimit"
	"github.com/jonathan/employee-cv/internal/service"
)

var (
	servePort int
	serveLoad bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes employee search and CV pipeline endpoints.

With --load (or server.load_on_start) the feeds are merged and indexed before the server accepts requests.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	serveCmd.Flags().BoolVar(&serveLoad, "load", false, "Merge and index the feeds on startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg := appConfig

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}

	svc, cleanup, err := service.Setup(ctx, cfg, service.Needs{LLM: true, Embedder: true})
	defer cleanup()
	if err != nil {
		return fmt.Errorf("failed to set up service: %w", err)
	}

	if serveLoad || cfg.Server.LoadOnStart {
		if !cfg.Sources.Configured() {
			return fmt.Errorf("--load requires at least one feed source")
		}
		count, err := svc.Reload(ctx)
		if err != nil {
			return fmt.Errorf("failed to load records: %w", err)
		}
		logger.Info().Int("count", count).Msg("records indexed on startup")
	}

	srv := server.New(svc, server.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      ratelimit.FromSettings(cfg.RateLimit),
	})
	return srv.Start()
}
