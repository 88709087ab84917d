// Package main provides the entry point for the a11ygate CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for a11ygate.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "a11ygate",
		Short: "Parallel accessibility audit with sitewide gating",
		Long: `a11ygate audits many pages of a site for accessibility issues by running
independent workers in parallel, one per (page x browser/viewport project),
and produces a single deduplicated sitewide summary per run.

Workers coordinate exclusively through the shared results tree, so the same
audit can run as goroutines in one process or as one OS process per project
driven by an external scheduler.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewCompareCmd())
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
