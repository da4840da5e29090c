// Package main provides the entry point for the scidigest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for scidigest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scidigest",
		Short: "LLM-steered crawler for science & technology news",
		Long: `scidigest crawls news sites from a seed list and collects
science & technology articles.

Each page is rendered (headless browser first, raw HTTP as fallback), then a
language-model oracle decides whether the page is a content page to classify
or an index page whose most promising link should be followed instead.
Relevant articles are written to a JSON digest.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
