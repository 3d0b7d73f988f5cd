package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimgiray/leaderboard/internal/services"
	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/spf13/cobra"
)

// NewReleasesCommand creates the releases command
func NewReleasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "releases",
		Short: "Write the release feed of the configured repositories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}
			if len(a.cfg.Releases.Repos) == 0 {
				logger.Warn("No repositories configured under releases.repos")
			}

			releases, err := services.NewReleaseService(a.client, a.store, a.cfg.Releases.Repos).Generate(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Wrote %d releases to %s\n", len(releases), a.store.ReleasesPath())
			return nil
		},
	}
}
