package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/alimgiray/leaderboard/internal/render"
	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	var opts render.Options

	cmd := &cobra.Command{
		Use:       "show [week|month|year]",
		Short:     "Print a stored leaderboard",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"week", "month", "year"},
		RunE: func(_ *cobra.Command, args []string) error {
			period := models.PeriodWeek
			if len(args) == 1 {
				period = models.Period(args[0])
			}
			if !period.Valid() {
				return fmt.Errorf("unknown period %q", period)
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			opts.Now = time.Now()
			return render.Leaderboard(os.Stdout, a.store.LeaderboardOrEmpty(period, opts.Now), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of contributors to show, 0 for all")
	cmd.Flags().BoolVar(&opts.HideRoles, "hide-roles", false, "leave out the roles the leaderboard hides")
	cmd.Flags().BoolVar(&opts.ShowBreakdown, "breakdown", false, "show a column per activity type")
	return cmd
}
