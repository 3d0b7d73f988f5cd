package models

import (
	"time"
)

// ActivityType represents a scorable kind of GitHub event
type ActivityType string

const (
	ActivityPROpened        ActivityType = "PR opened"
	ActivityPRMerged        ActivityType = "PR merged"
	ActivityIssueOpened     ActivityType = "Issue opened"
	ActivityReviewSubmitted ActivityType = "Review submitted"
	ActivityIssueLabeled    ActivityType = "Issue labeled"
	ActivityIssueAssigned   ActivityType = "Issue assigned"
	ActivityIssueClosed     ActivityType = "Issue closed"
)

// ActivityTypes returns every activity type in display order
func ActivityTypes() []ActivityType {
	return []ActivityType{
		ActivityPROpened,
		ActivityPRMerged,
		ActivityIssueOpened,
		ActivityReviewSubmitted,
		ActivityIssueLabeled,
		ActivityIssueAssigned,
		ActivityIssueClosed,
	}
}

// Valid checks if the activity type is part of the fixed enumeration
func (t ActivityType) Valid() bool {
	for _, known := range ActivityTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// RawActivity represents one observed event attributed to a contributor
type RawActivity struct {
	Type       ActivityType `json:"type"`
	OccurredAt time.Time    `json:"occurred_at"`
	Title      *string      `json:"title"`
	Link       *string      `json:"link"`
	Points     int          `json:"points"`
}

// ActivityMeta carries the optional descriptive fields of an activity
type ActivityMeta struct {
	Title string
	Link  string
}

// AttributedActivity is an activity that has not been folded into a contributor yet.
// Ingestion produces these; the scoring engine consumes them.
type AttributedActivity struct {
	Identity   Identity
	Type       ActivityType
	OccurredAt time.Time
	Meta       ActivityMeta
}

// DailyActivity represents the activity of a contributor on one UTC calendar day
type DailyActivity struct {
	Date   string `json:"date"`
	Count  int    `json:"count"`
	Points int    `json:"points"`
}

// ActivityStat is the per-type entry of a contributor's breakdown
type ActivityStat struct {
	Count  int `json:"count"`
	Points int `json:"points"`
}

// DayKey returns the UTC calendar day of t in YYYY-MM-DD form
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
