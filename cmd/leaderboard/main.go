// Package main provides the entry point for the leaderboard CLI.
package main

import (
	"fmt"
	"os"

	"github.com/alimgiray/leaderboard/cmd/leaderboard/commands"
	"github.com/spf13/cobra"
)

// Set through -ldflags at build time
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "GitHub contributor leaderboard generator",
		Long: `Leaderboard ingests GitHub activity of an organization and publishes
point-scored contributor leaderboards for the last week, month and year.

Commands:
  generate  Fetch activity and write the leaderboard artifacts
  releases  Write the release feed of the tracked repositories
  export    Export the stored leaderboards as a spreadsheet
  show      Print a stored leaderboard
  serve     Serve the stored artifacts over HTTP`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&commands.ConfigPath, "config", "c", "", "path to a YAML config file")

	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(commands.NewReleasesCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewShowCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "leaderboard %s (commit: %s)\n", version, commit)
		},
	}
}
