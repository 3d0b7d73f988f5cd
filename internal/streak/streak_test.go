package streak

import (
	"testing"
	"time"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/stretchr/testify/assert"
)

func days(dates ...string) []models.DailyActivity {
	series := make([]models.DailyActivity, 0, len(dates))
	for _, date := range dates {
		series = append(series, models.DailyActivity{Date: date, Count: 1, Points: 10})
	}
	return series
}

func TestCalculate(t *testing.T) {
	now := time.Date(2023, 1, 10, 15, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		daily    []models.DailyActivity
		expected Streaks
	}{
		{
			name:     "Empty activity",
			daily:    nil,
			expected: Streaks{Current: 0, Longest: 0},
		},
		{
			name:     "Consecutive days",
			daily:    days("2023-01-01", "2023-01-02", "2023-01-03"),
			expected: Streaks{Current: 0, Longest: 3},
		},
		{
			name:     "Gap resets longest streak",
			daily:    days("2023-01-01", "2023-01-02", "2023-01-04", "2023-01-05", "2023-01-06"),
			expected: Streaks{Current: 0, Longest: 3},
		},
		{
			name:     "Unsorted input",
			daily:    days("2023-01-06", "2023-01-04", "2023-01-05", "2023-01-01"),
			expected: Streaks{Current: 0, Longest: 3},
		},
		{
			name:     "Single day today",
			daily:    days("2023-01-10"),
			expected: Streaks{Current: 1, Longest: 1},
		},
		{
			name:     "Active today and yesterday",
			daily:    days("2023-01-09", "2023-01-10"),
			expected: Streaks{Current: 2, Longest: 2},
		},
		{
			name:     "Only active until yesterday",
			daily:    days("2023-01-07", "2023-01-08", "2023-01-09"),
			expected: Streaks{Current: 3, Longest: 3},
		},
		{
			name:     "Last activity two days ago",
			daily:    days("2023-01-01", "2023-01-02", "2023-01-03", "2023-01-04", "2023-01-05", "2023-01-06", "2023-01-07", "2023-01-08"),
			expected: Streaks{Current: 0, Longest: 8},
		},
		{
			name:     "Current streak stops at first gap",
			daily:    days("2023-01-01", "2023-01-02", "2023-01-03", "2023-01-04", "2023-01-08", "2023-01-09", "2023-01-10"),
			expected: Streaks{Current: 3, Longest: 4},
		},
		{
			name:     "Duplicate dates count once",
			daily:    days("2023-01-08", "2023-01-09", "2023-01-09", "2023-01-10"),
			expected: Streaks{Current: 3, Longest: 3},
		},
		{
			name: "Zero-count days are ignored",
			daily: []models.DailyActivity{
				{Date: "2023-01-08", Count: 1},
				{Date: "2023-01-09", Count: 0},
				{Date: "2023-01-10", Count: 2},
			},
			expected: Streaks{Current: 1, Longest: 1},
		},
		{
			name: "Unparseable dates are ignored",
			daily: []models.DailyActivity{
				{Date: "not-a-date", Count: 1},
				{Date: "2023-01-10", Count: 1},
			},
			expected: Streaks{Current: 1, Longest: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Calculate(tc.daily, now))
		})
	}
}

func TestCalculateUsesUTCDayBoundary(t *testing.T) {
	// 01:00 on Jan 11 at UTC+3 is still Jan 10 in UTC
	now := time.Date(2023, 1, 11, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*60*60))

	result := Calculate(days("2023-01-08"), now)

	assert.Equal(t, 0, result.Current)

	result = Calculate(days("2023-01-09"), now)

	assert.Equal(t, 1, result.Current)
}

func TestFromToday(t *testing.T) {
	today := time.Now().UTC()
	yesterday := today.AddDate(0, 0, -1)
	twoDaysAgo := today.AddDate(0, 0, -2)

	t.Run("Active today", func(t *testing.T) {
		result := FromToday(days(yesterday.Format("2006-01-02"), today.Format("2006-01-02")))
		assert.Equal(t, 2, result.Current)
	})

	t.Run("Inactive for two days", func(t *testing.T) {
		result := FromToday(days(twoDaysAgo.Format("2006-01-02")))
		assert.Equal(t, 0, result.Current)
		assert.Equal(t, 1, result.Longest)
	})
}
