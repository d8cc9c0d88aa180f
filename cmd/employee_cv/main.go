// Package main provides the entry point for the employee-cv CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/employee-cv/internal/config"
	"github.com/jonathan/employee-cv/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "employee_cv",
	Short: "Employee records, similarity search and CV drafting",
	Long: `employee_cv reconciles the HRM, xOPS and custom employee feeds into unified records,
indexes them for similarity search, and drafts, reviews and refines CVs for individual employees.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	configPath string
	verbose    bool
	hrmPath    string
	xopsPath   string
	customPath string

	// appConfig is populated before any subcommand runs
	appConfig *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.PersistentFlags().StringVar(&hrmPath, "hrm", "", "Path to the HRM feed (overrides config and HRM_PATH)")
	rootCmd.PersistentFlags().StringVar(&xopsPath, "xops", "", "Path to the xOPS feed (overrides config and XOPS_PATH)")
	rootCmd.PersistentFlags().StringVar(&customPath, "custom", "", "Path to the custom feed (overrides config and CUSTOM_PATH)")
}

// loadConfig resolves configuration in order: defaults, config file,
// environment, then flags.
func loadConfig(_ *cobra.Command, _ []string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	if hrmPath != "" {
		cfg.Sources.HRMPath = hrmPath
	}
	if xopsPath != "" {
		cfg.Sources.XOPSPath = xopsPath
	}
	if customPath != "" {
		cfg.Sources.CustomPath = customPath
	}
	if verbose {
		cfg.Logger.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(cfg.Logger)
	appConfig = cfg
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
