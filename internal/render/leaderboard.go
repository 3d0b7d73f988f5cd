// Package render formats leaderboards for the terminal.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Options controls which entries are rendered
type Options struct {
	Limit         int
	HideRoles     bool
	ShowBreakdown bool
	Now           time.Time
}

// Leaderboard writes the board as a table. Entries whose role is listed in the
// board's hidden roles are skipped when HideRoles is set.
func Leaderboard(w io.Writer, board *models.LeaderboardFile, opts Options) error {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	updated := time.UnixMilli(board.UpdatedAt)

	hidden := make(map[string]bool, len(board.HiddenRoles))
	if opts.HideRoles {
		for _, role := range board.HiddenRoles {
			hidden[role] = true
		}
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(fmt.Sprintf("Leaderboard: %s (updated %s)", board.Period, humanize.RelTime(updated, now, "ago", "from now")))

	header := table.Row{"#", "Username", "Name", "Role", "Points", "Streak"}
	if opts.ShowBreakdown {
		for _, activityType := range models.ActivityTypes() {
			header = append(header, string(activityType))
		}
	}
	tbl.AppendHeader(header)

	shown := 0
	for _, c := range board.Entries {
		if hidden[string(c.Role)] {
			continue
		}
		if opts.Limit > 0 && shown >= opts.Limit {
			break
		}
		shown++

		row := table.Row{
			shown,
			c.Username,
			c.DisplayName(),
			string(c.Role),
			humanize.Comma(int64(c.TotalPoints)),
			fmt.Sprintf("%d / %d", c.CurrentStreak, c.LongestStreak),
		}
		if opts.ShowBreakdown {
			for _, activityType := range models.ActivityTypes() {
				count := 0
				if stat, ok := c.ActivityBreakdown[activityType]; ok {
					count = stat.Count
				}
				row = append(row, count)
			}
		}
		tbl.AppendRow(row)
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %s contributors", humanize.Comma(int64(len(board.Entries))))})

	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}
