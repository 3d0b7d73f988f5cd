package models

import (
	"sort"
	"strings"
)

// Role represents a contributor's standing in the organization
type Role string

const (
	RoleMaintainer  Role = "Maintainer"
	RoleAlumni      Role = "Alumni"
	RoleContributor Role = "Contributor"
)

// Identity represents a GitHub account as seen by the ingestion layer
type Identity struct {
	Login     string  `json:"login"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Type      string  `json:"type"` // "User", "Bot", "Organization"
}

// IsBot reports whether the identity belongs to an automation account
func (i Identity) IsBot() bool {
	return i.Type == "Bot" || strings.HasSuffix(strings.ToLower(i.Login), "[bot]")
}

// Contributor is the aggregate of all scored activity of one username during a run
type Contributor struct {
	Username          string                         `json:"username"`
	Name              *string                        `json:"name"`
	AvatarURL         *string                        `json:"avatar_url"`
	Role              Role                           `json:"role"`
	TotalPoints       int                            `json:"total_points"`
	ActivityBreakdown map[ActivityType]*ActivityStat `json:"activity_breakdown"`
	DailyActivity     []DailyActivity                `json:"daily_activity"`
	RawActivities     []RawActivity                  `json:"raw_activities"`

	// Filled in by the report assembler once the aggregate is final
	CurrentStreak   int      `json:"current_streak"`
	LongestStreak   int      `json:"longest_streak"`
	AvgTurnaroundMs int64    `json:"avg_turnaround_ms"`
	Badges          []string `json:"badges"`

	dayIndex map[string]int
}

// NewContributor creates an empty aggregate for the given identity and role
func NewContributor(identity Identity, role Role) *Contributor {
	return &Contributor{
		Username:          identity.Login,
		Name:              identity.Name,
		AvatarURL:         identity.AvatarURL,
		Role:              role,
		ActivityBreakdown: make(map[ActivityType]*ActivityStat),
		DailyActivity:     make([]DailyActivity, 0),
		RawActivities:     make([]RawActivity, 0),
		Badges:            make([]string, 0),
		dayIndex:          make(map[string]int),
	}
}

// Accumulate adds one activity to the totals, the breakdown and its day entry.
// It does not touch RawActivities.
func (c *Contributor) Accumulate(act RawActivity) {
	c.TotalPoints += act.Points

	if c.ActivityBreakdown == nil {
		c.ActivityBreakdown = make(map[ActivityType]*ActivityStat)
	}
	stat, ok := c.ActivityBreakdown[act.Type]
	if !ok {
		stat = &ActivityStat{}
		c.ActivityBreakdown[act.Type] = stat
	}
	stat.Count++
	stat.Points += act.Points

	if c.dayIndex == nil {
		c.reindexDays()
	}
	day := DayKey(act.OccurredAt)
	idx, ok := c.dayIndex[day]
	if !ok {
		idx = len(c.DailyActivity)
		c.dayIndex[day] = idx
		c.DailyActivity = append(c.DailyActivity, DailyActivity{Date: day})
	}
	c.DailyActivity[idx].Count++
	c.DailyActivity[idx].Points += act.Points
}

// ResetAggregates clears every value derived from RawActivities
func (c *Contributor) ResetAggregates() {
	c.TotalPoints = 0
	c.ActivityBreakdown = make(map[ActivityType]*ActivityStat)
	c.DailyActivity = make([]DailyActivity, 0)
	c.dayIndex = make(map[string]int)
}

// SortDailyActivity orders the daily series newest first
func (c *Contributor) SortDailyActivity() {
	sort.Slice(c.DailyActivity, func(i, j int) bool {
		return c.DailyActivity[i].Date > c.DailyActivity[j].Date
	})
	c.reindexDays()
}

// DisplayName returns the name when known, otherwise the username
func (c *Contributor) DisplayName() string {
	if c.Name != nil && *c.Name != "" {
		return *c.Name
	}
	return c.Username
}

func (c *Contributor) reindexDays() {
	c.dayIndex = make(map[string]int, len(c.DailyActivity))
	for i, entry := range c.DailyActivity {
		c.dayIndex[entry.Date] = i
	}
}
