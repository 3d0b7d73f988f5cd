package models

import (
	"time"
)

// Period names a leaderboard time window
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Periods returns the published periods, narrowest first
func Periods() []Period {
	return []Period{PeriodWeek, PeriodMonth, PeriodYear}
}

// Days returns the length of the period window
func (p Period) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	case PeriodYear:
		return 365
	default:
		return 0
	}
}

// Valid checks if the period is one of the published periods
func (p Period) Valid() bool {
	return p.Days() > 0
}

// TopContributor is a ranked summary inside topByActivity
type TopContributor struct {
	Username  string  `json:"username"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Points    int     `json:"points"`
	Count     int     `json:"count"`
}

// LeaderboardFile is the artifact handed to the presentation layer, one per period
type LeaderboardFile struct {
	Period        Period                            `json:"period"`
	UpdatedAt     int64                             `json:"updatedAt"`
	StartDate     string                            `json:"startDate"`
	EndDate       string                            `json:"endDate"`
	Entries       []*Contributor                    `json:"entries"`
	TopByActivity map[ActivityType][]TopContributor `json:"topByActivity"`
	HiddenRoles   []string                          `json:"hiddenRoles"`
}

// NewEmptyLeaderboard creates the zero-data shape for a period
func NewEmptyLeaderboard(period Period, now time.Time) *LeaderboardFile {
	now = now.UTC()
	return &LeaderboardFile{
		Period:        period,
		UpdatedAt:     now.UnixMilli(),
		StartDate:     now.Format(time.RFC3339),
		EndDate:       now.Format(time.RFC3339),
		Entries:       make([]*Contributor, 0),
		TopByActivity: make(map[ActivityType][]TopContributor),
		HiddenRoles:   make([]string, 0),
	}
}

// Normalize replaces nil collections with empty ones so the JSON never carries null
func (l *LeaderboardFile) Normalize() {
	if l.Entries == nil {
		l.Entries = make([]*Contributor, 0)
	}
	if l.TopByActivity == nil {
		l.TopByActivity = make(map[ActivityType][]TopContributor)
	}
	if l.HiddenRoles == nil {
		l.HiddenRoles = make([]string, 0)
	}
}
