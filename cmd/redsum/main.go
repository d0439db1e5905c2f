// Package main provides the entry point for the redsum CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/redsum/redsum/cmd/redsum/commands"
	"github.com/redsum/redsum/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "redsum",
		Short: "Redsum - Reddit data export summarizer",
		Long: `Redsum processes Reddit GDPR data export archives and produces
summary statistics over posts, comments, votes, and subscriptions.

Commands:
  run       Process archives and print the summary
  report    Render the summary from an existing checkpoint`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewReportCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "redsum %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
