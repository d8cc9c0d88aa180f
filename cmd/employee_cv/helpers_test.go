package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// feedFlags points the feed flags at the shared test feeds
func feedFlags() []string {
	dir := filepath.Join("..", "..", "testdata", "feeds")
	return []string{
		"--hrm", filepath.Join(dir, "hrm.json"),
		"--xops", filepath.Join(dir, "xops.json"),
		"--custom", filepath.Join(dir, "custom.json"),
	}
}

// resetFlags restores every flag to its default. Flag values and their
// Changed state outlive a single Execute call.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		// Set appends to array flags, so those are cleared through their variable
		if f.Value.Type() != "stringArray" {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command in-process and returns its stdout and
// stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)
	cvFeedback = nil
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
