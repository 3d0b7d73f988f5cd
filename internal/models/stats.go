package models

// Badge slugs awarded to contributors
const (
	BadgeStreak5   = "streak_5"
	BadgeStreak10  = "streak_10"
	BadgeStreak30  = "streak_30"
	BadgePoints100 = "points_100"
	BadgePoints500 = "points_500"
	BadgeCoreTeam  = "core_team"
)

// MonthBuckets counts the activities of the last four weeks, w1 being the most recent
type MonthBuckets struct {
	W1 int `json:"w1"`
	W2 int `json:"w2"`
	W3 int `json:"w3"`
	W4 int `json:"w4"`
}

// ContributorProfile is a contributor with the statistics shown on their profile
type ContributorProfile struct {
	Contributor     *Contributor `json:"contributor"`
	CurrentStreak   int          `json:"current_streak"`
	LongestStreak   int          `json:"longest_streak"`
	AvgTurnaroundMs int64        `json:"avg_turnaround_ms"`
	Badges          []string     `json:"badges"`
}

// ActivityOverview summarizes recent activity across all contributors
type ActivityOverview struct {
	Buckets            MonthBuckets `json:"buckets"`
	PreviousMonthCount int          `json:"previous_month_count"`
}
