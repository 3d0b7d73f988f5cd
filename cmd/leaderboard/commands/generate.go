package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/alimgiray/leaderboard/internal/services"
	"github.com/spf13/cobra"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	var withReleases bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fetch GitHub activity and write the week, month and year leaderboards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}
			scheduler, err := a.schedulerService()
			if err != nil {
				return err
			}

			run, err := scheduler.RunNow(ctx, models.RunTriggerManual)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Run %s completed: %d activities, %d contributors, %d repositories skipped\n",
				run.ID, run.Activities, run.Contributors, len(run.SkippedRepos))

			if withReleases {
				releases, err := services.NewReleaseService(a.client, a.store, a.cfg.Releases.Repos).Generate(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Wrote %d releases\n", len(releases))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withReleases, "releases", false, "also regenerate the release feed")
	return cmd
}
