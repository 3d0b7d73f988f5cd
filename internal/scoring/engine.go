package scoring

import (
	"sort"
	"strings"
	"time"

	"github.com/alimgiray/leaderboard/internal/models"
)

// Registry maps a registry key (the username) to its contributor aggregate
type Registry map[string]*models.Contributor

// Option configures an Engine
type Option func(*Engine)

// WithCaseFolding groups activities by lower-cased username instead of the exact login
func WithCaseFolding() Option {
	return func(e *Engine) {
		e.foldCase = true
	}
}

// Engine folds attributed activities into contributor aggregates.
// It is not safe for concurrent use; one engine serves one run.
type Engine struct {
	points   models.PointsTable
	roles    *RoleClassifier
	registry Registry
	foldCase bool
}

// NewEngine creates an engine with an empty registry
func NewEngine(points models.PointsTable, roles *RoleClassifier, opts ...Option) *Engine {
	e := &Engine{
		points:   points,
		roles:    roles,
		registry: make(Registry),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Points returns a copy of the engine's points table
func (e *Engine) Points() models.PointsTable {
	return e.points
}

// Registry exposes the contributor registry
func (e *Engine) Registry() Registry {
	return e.registry
}

// Len returns the number of contributors seen so far
func (e *Engine) Len() int {
	return len(e.registry)
}

// EnsureContributor returns the aggregate for the identity, creating it on first sight.
// The role is classified only when the aggregate is created.
func (e *Engine) EnsureContributor(identity models.Identity) *models.Contributor {
	key := e.key(identity.Login)
	if contributor, ok := e.registry[key]; ok {
		return contributor
	}

	role := models.RoleContributor
	if e.roles != nil {
		role = e.roles.Classify(identity.Login)
	}
	contributor := models.NewContributor(identity, role)
	e.registry[key] = contributor
	return contributor
}

// RecordActivity appends one activity to the contributor and updates its aggregates incrementally.
// Input is trusted: an unknown type or a zero timestamp is recorded as is.
func (e *Engine) RecordActivity(contributor *models.Contributor, activityType models.ActivityType, occurredAt time.Time, points int, meta models.ActivityMeta) {
	act := models.RawActivity{
		Type:       activityType,
		OccurredAt: occurredAt.UTC(),
		Title:      SanitizeTitle(meta.Title),
		Points:     points,
	}
	if meta.Link != "" {
		link := meta.Link
		act.Link = &link
	}

	contributor.RawActivities = append(contributor.RawActivities, act)
	contributor.Accumulate(act)
}

// Record ensures the contributor and records the activity with points from the engine's table
func (e *Engine) Record(activity models.AttributedActivity) *models.Contributor {
	contributor := e.EnsureContributor(activity.Identity)
	e.RecordActivity(contributor, activity.Type, activity.OccurredAt, e.points.For(activity.Type), activity.Meta)
	return contributor
}

// DeduplicateAndRecompute removes duplicate raw activities of every contributor,
// keeping the first occurrence, and rebuilds all aggregates from what is left.
func (e *Engine) DeduplicateAndRecompute() {
	for _, contributor := range e.registry {
		Recompute(contributor)
	}
}

// Recompute deduplicates and fully rebuilds a single contributor
func Recompute(contributor *models.Contributor) {
	seen := make(map[string]struct{}, len(contributor.RawActivities))
	unique := make([]models.RawActivity, 0, len(contributor.RawActivities))
	for _, act := range contributor.RawActivities {
		key := DedupKey(act)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, act)
	}
	contributor.RawActivities = unique

	contributor.ResetAggregates()
	for _, act := range contributor.RawActivities {
		contributor.Accumulate(act)
	}
	contributor.SortDailyActivity()
}

// DedupKey returns the composite identity of an activity: type, instant and link, falling back to title
func DedupKey(act models.RawActivity) string {
	ref := ""
	if act.Link != nil {
		ref = *act.Link
	} else if act.Title != nil {
		ref = *act.Title
	}
	return string(act.Type) + "|" + act.OccurredAt.UTC().Format(time.RFC3339Nano) + "|" + ref
}

// Contributors returns the aggregates ordered by total points, then username
func (e *Engine) Contributors() []*models.Contributor {
	contributors := make([]*models.Contributor, 0, len(e.registry))
	for _, contributor := range e.registry {
		contributors = append(contributors, contributor)
	}
	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].TotalPoints != contributors[j].TotalPoints {
			return contributors[i].TotalPoints > contributors[j].TotalPoints
		}
		return contributors[i].Username < contributors[j].Username
	})
	return contributors
}

func (e *Engine) key(login string) string {
	if e.foldCase {
		return strings.ToLower(login)
	}
	return login
}
