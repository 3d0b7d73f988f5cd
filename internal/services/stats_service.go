package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/alimgiray/leaderboard/internal/streak"
)

// ErrContributorNotFound is returned when a username is not on a leaderboard
var ErrContributorNotFound = errors.New("contributor not found")

const day = 24 * time.Hour

// StatsService derives per-contributor statistics from finished aggregates
type StatsService struct {
	now func() time.Time
}

func NewStatsService() *StatsService {
	return &StatsService{now: time.Now}
}

// Enrich fills in streaks, turnaround and badges of a recomputed contributor
func (s *StatsService) Enrich(c *models.Contributor, now time.Time) {
	streaks := streak.Calculate(c.DailyActivity, now)
	c.CurrentStreak = streaks.Current
	c.LongestStreak = streaks.Longest
	c.AvgTurnaroundMs = AverageTurnaround(c.RawActivities)
	c.Badges = Badges(c)
}

// AverageTurnaround returns the mean time in milliseconds between opening and
// merging a pull request, pairing both events by link. Zero when nothing pairs.
func AverageTurnaround(activities []models.RawActivity) int64 {
	sorted := make([]models.RawActivity, 0, len(activities))
	for _, act := range activities {
		if act.Link != nil && (act.Type == models.ActivityPROpened || act.Type == models.ActivityPRMerged) {
			sorted = append(sorted, act)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})

	opened := make(map[string]time.Time)
	var total time.Duration
	pairs := 0
	for _, act := range sorted {
		switch act.Type {
		case models.ActivityPROpened:
			opened[*act.Link] = act.OccurredAt
		case models.ActivityPRMerged:
			if openedAt, ok := opened[*act.Link]; ok {
				total += act.OccurredAt.Sub(openedAt)
				pairs++
			}
		}
	}

	if pairs == 0 {
		return 0
	}
	return total.Milliseconds() / int64(pairs)
}

// Badges returns the badge slugs a contributor has earned. Only the highest
// streak tier and the highest points tier are awarded.
func Badges(c *models.Contributor) []string {
	badges := make([]string, 0, 3)

	maxStreak := c.CurrentStreak
	if c.LongestStreak > maxStreak {
		maxStreak = c.LongestStreak
	}
	switch {
	case maxStreak >= 30:
		badges = append(badges, models.BadgeStreak30)
	case maxStreak >= 10:
		badges = append(badges, models.BadgeStreak10)
	case maxStreak >= 5:
		badges = append(badges, models.BadgeStreak5)
	}

	switch {
	case c.TotalPoints >= 500:
		badges = append(badges, models.BadgePoints500)
	case c.TotalPoints >= 100:
		badges = append(badges, models.BadgePoints100)
	}

	if c.Role == models.RoleMaintainer {
		badges = append(badges, models.BadgeCoreTeam)
	}
	return badges
}

// MonthlyBuckets counts the raw activities of all entries by week, over the last 28 days
func (s *StatsService) MonthlyBuckets(entries []*models.Contributor) models.MonthBuckets {
	now := s.now()
	var buckets models.MonthBuckets
	for _, c := range entries {
		for _, act := range c.RawActivities {
			switch daysAgo := daysBetween(act.OccurredAt, now); {
			case daysAgo < 0:
			case daysAgo < 7:
				buckets.W1++
			case daysAgo < 14:
				buckets.W2++
			case daysAgo < 21:
				buckets.W3++
			case daysAgo < 28:
				buckets.W4++
			}
		}
	}
	return buckets
}

// PreviousMonthCount counts the raw activities that happened 30 to 59 whole days ago
func (s *StatsService) PreviousMonthCount(entries []*models.Contributor) int {
	now := s.now()
	count := 0
	for _, c := range entries {
		for _, act := range c.RawActivities {
			if daysAgo := daysBetween(act.OccurredAt, now); daysAgo >= 30 && daysAgo < 60 {
				count++
			}
		}
	}
	return count
}

// Overview combines the monthly buckets of the month board with the previous-month
// count taken from the year board
func (s *StatsService) Overview(month, year *models.LeaderboardFile) models.ActivityOverview {
	return models.ActivityOverview{
		Buckets:            s.MonthlyBuckets(month.Entries),
		PreviousMonthCount: s.PreviousMonthCount(year.Entries),
	}
}

// Profile looks a contributor up by username, ignoring case, and recomputes the
// statistics against the current clock
func (s *StatsService) Profile(board *models.LeaderboardFile, username string) (*models.ContributorProfile, error) {
	for _, c := range board.Entries {
		if !strings.EqualFold(c.Username, username) {
			continue
		}
		streaks := streak.Calculate(c.DailyActivity, s.now())
		profile := &models.ContributorProfile{
			Contributor:     c,
			CurrentStreak:   streaks.Current,
			LongestStreak:   streaks.Longest,
			AvgTurnaroundMs: AverageTurnaround(c.RawActivities),
		}
		profile.Badges = Badges(&models.Contributor{
			TotalPoints:   c.TotalPoints,
			Role:          c.Role,
			CurrentStreak: streaks.Current,
			LongestStreak: streaks.Longest,
		})
		return profile, nil
	}
	return nil, ErrContributorNotFound
}

// daysBetween returns the number of whole days from t to now
func daysBetween(t, now time.Time) int {
	return int(now.Sub(t) / day)
}
