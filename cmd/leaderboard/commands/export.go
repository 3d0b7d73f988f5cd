package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/alimgiray/leaderboard/internal/services"
	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/alimgiray/leaderboard/pkg/store"
	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored leaderboards to an .xlsx workbook",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			var boards []*models.LeaderboardFile
			for _, period := range models.Periods() {
				board, err := a.store.ReadLeaderboard(period)
				if errors.Is(err, store.ErrNotFound) {
					logger.WithField("period", period).Warn("No leaderboard stored, skipping")
					continue
				}
				if err != nil {
					return err
				}
				boards = append(boards, board)
			}
			if len(boards) == 0 {
				return fmt.Errorf("no leaderboards found in %s, run generate first", a.store.Root())
			}

			if output == "" {
				output = filepath.Join(a.store.Root(), "leaderboard.xlsx")
			}
			if err := services.NewExportService().Export(boards, output); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Exported %d leaderboards to %s\n", len(boards), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "workbook path (default <output_dir>/leaderboard.xlsx)")
	return cmd
}
