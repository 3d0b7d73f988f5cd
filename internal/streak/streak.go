// Package streak derives consecutive-day statistics from a daily activity series.
package streak

import (
	"sort"
	"time"

	"github.com/alimgiray/leaderboard/internal/models"
)

const day = 24 * time.Hour

// Streaks holds the current and longest run of consecutive active UTC days
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// FromToday calculates streaks relative to the current UTC day
func FromToday(daily []models.DailyActivity) Streaks {
	return Calculate(daily, time.Now())
}

// Calculate returns the streaks of the series as of now.
// Days without activity and dates that do not parse are ignored. A current streak
// only exists when the last active day is today or yesterday in UTC.
func Calculate(daily []models.DailyActivity, now time.Time) Streaks {
	active := activeDays(daily)
	if len(active) == 0 {
		return Streaks{}
	}

	longest, run := 0, 0
	for i, current := range active {
		if i == 0 {
			run = 1
		} else {
			switch gap := gapDays(active[i-1], current); {
			case gap == 1:
				run++
			case gap > 1:
				run = 1
			}
		}
		if run > longest {
			longest = run
		}
	}

	today := truncateDay(now)
	yesterday := today.Add(-day)
	last := active[len(active)-1]
	if !last.Equal(today) && !last.Equal(yesterday) {
		return Streaks{Current: 0, Longest: longest}
	}

	current := 1
	for i := len(active) - 1; i > 0; i-- {
		gap := gapDays(active[i-1], active[i])
		if gap > 1 {
			break
		}
		if gap == 1 {
			current++
		}
	}

	return Streaks{Current: current, Longest: longest}
}

func activeDays(daily []models.DailyActivity) []time.Time {
	days := make([]time.Time, 0, len(daily))
	for _, entry := range daily {
		if entry.Count <= 0 {
			continue
		}
		parsed, err := time.ParseInLocation("2006-01-02", entry.Date, time.UTC)
		if err != nil {
			continue
		}
		days = append(days, parsed)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

func gapDays(previous, current time.Time) int {
	return int(current.Sub(previous) / day)
}

func truncateDay(t time.Time) time.Time {
	year, month, dayOfMonth := t.UTC().Date()
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}
