package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alimgiray/leaderboard/internal/githubapi"
	"github.com/alimgiray/leaderboard/internal/metrics"
	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/alimgiray/leaderboard/internal/scoring"
	"github.com/alimgiray/leaderboard/internal/workers"
	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/alimgiray/leaderboard/pkg/store"
	"github.com/dustin/go-humanize"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
)

// ErrRunAborted wraps every failure that stops a run before artifacts are written
var ErrRunAborted = errors.New("leaderboard run aborted")

// ActivitySource is the part of the GitHub client the org-wide ingestion needs
type ActivitySource interface {
	SearchByDateWindows(ctx context.Context, query string, start, end time.Time, windowDays int, dateField string) ([]githubapi.SearchItem, error)
	FetchOrgRepos(ctx context.Context, org string, includeArchived bool) ([]string, error)
	FetchUser(ctx context.Context, login string) (*github.User, error)
}

// LeaderboardOptions holds the run settings of the leaderboard
type LeaderboardOptions struct {
	Org              string
	Repos            []string
	IncludeArchived  bool
	SearchWindowDays int
	Workers          int
	TopN             int
	HiddenRoles      []string
	FoldUsernameCase bool
	SkipFailedRepos  bool
	EnrichNames      bool
}

// RunReport describes what one run ingested
type RunReport struct {
	Activities   int
	Contributors int
	SkippedRepos []string
	Periods      []models.Period
}

type LeaderboardService struct {
	source     ActivitySource
	repoSource workers.SourceFactory
	store      *store.Store
	stats      *StatsService
	roles      *scoring.RoleClassifier
	points     models.PointsTable
	opts       LeaderboardOptions
	now        func() time.Time
}

func NewLeaderboardService(
	source ActivitySource,
	repoSource workers.SourceFactory,
	artifacts *store.Store,
	stats *StatsService,
	roles *scoring.RoleClassifier,
	opts LeaderboardOptions,
) *LeaderboardService {
	if opts.TopN <= 0 {
		opts.TopN = 3
	}
	return &LeaderboardService{
		source:     source,
		repoSource: repoSource,
		store:      artifacts,
		stats:      stats,
		roles:      roles,
		points:     models.DefaultPoints(),
		opts:       opts,
		now:        time.Now,
	}
}

// Generate runs a full ingestion and writes one artifact per period.
// Nothing is written unless every period was built.
func (s *LeaderboardService) Generate(ctx context.Context) (*RunReport, error) {
	now := s.now().UTC()
	since := now.AddDate(0, 0, -models.PeriodYear.Days())

	activities, skipped, err := s.Collect(ctx, since, now)
	if err != nil {
		return nil, err
	}

	files := s.Build(activities, now)
	if err := s.store.WriteLeaderboards(files); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRunAborted, err)
	}

	report := &RunReport{
		Activities:   len(activities),
		SkippedRepos: skipped,
	}
	for _, file := range files {
		report.Periods = append(report.Periods, file.Period)
		metrics.Contributors.WithLabelValues(string(file.Period)).Set(float64(len(file.Entries)))
		if file.Period == models.PeriodYear {
			report.Contributors = len(file.Entries)
		}
	}

	logger.WithFields(logrus.Fields{
		"activities":   humanize.Comma(int64(report.Activities)),
		"contributors": report.Contributors,
		"skipped":      len(skipped),
	}).Info("Leaderboards generated")

	return report, nil
}

// Collect gathers the attributed activities of the organization between since and until.
// Bot accounts, unknown types and activities without a timestamp are dropped.
func (s *LeaderboardService) Collect(ctx context.Context, since, until time.Time) ([]models.AttributedActivity, []string, error) {
	searched, issues, err := s.search(ctx, since, until)
	if err != nil {
		return nil, nil, err
	}

	repos := s.opts.Repos
	if len(repos) == 0 {
		repos, err = s.source.FetchOrgRepos(ctx, s.opts.Org, s.opts.IncludeArchived)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: list repositories of %s: %w", ErrRunAborted, s.opts.Org, err)
		}
	}

	jobs := make([]workers.RepoJob, 0, len(repos))
	for _, repo := range repos {
		jobs = append(jobs, workers.RepoJob{Repo: repo, Issues: issues[repo]})
	}

	pool := workers.NewIngestPool(s.opts.Workers, s.repoSource, s.opts.Org, since)
	results := pool.Run(ctx, jobs)

	collected := searched
	var skipped []string
	for _, result := range results {
		if result.Err != nil {
			if !s.opts.SkipFailedRepos || ctx.Err() != nil {
				return nil, nil, fmt.Errorf("%w: repository %s: %w", ErrRunAborted, result.Repo, result.Err)
			}
			logger.WithError(result.Err).WithField("repo", result.Repo).Warn("Skipping repository")
			skipped = append(skipped, result.Repo)
			continue
		}
		collected = append(collected, result.Activities...)
	}

	activities := make([]models.AttributedActivity, 0, len(collected))
	for _, act := range collected {
		if act.Identity.Login == "" || act.Identity.IsBot() || !act.Type.Valid() || act.OccurredAt.IsZero() {
			continue
		}
		activities = append(activities, act)
		metrics.ActivitiesIngested.WithLabelValues(string(act.Type)).Inc()
	}

	if s.opts.EnrichNames {
		s.enrichNames(ctx, activities)
	}

	return activities, skipped, nil
}

// search runs the org-wide searches. Issues are also returned grouped by repository
// so their events can be fetched.
func (s *LeaderboardService) search(ctx context.Context, since, until time.Time) ([]models.AttributedActivity, map[string][]workers.IssueRef, error) {
	org := s.opts.Org
	queries := []struct {
		query string
		field string
		kind  models.ActivityType
	}{
		{"is:pr+org:" + org, githubapi.DefaultDateField, models.ActivityPROpened},
		{"is:pr+org:" + org + "+is:merged", "merged", models.ActivityPRMerged},
		{"is:issue+org:" + org, githubapi.DefaultDateField, models.ActivityIssueOpened},
	}

	var activities []models.AttributedActivity
	issues := make(map[string][]workers.IssueRef)
	seenIssues := make(map[string]struct{})
	for _, q := range queries {
		items, err := s.source.SearchByDateWindows(ctx, q.query, since, until, s.opts.SearchWindowDays, q.field)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: search %q: %w", ErrRunAborted, q.query, err)
		}
		logger.WithFields(logrus.Fields{
			"query": q.query,
			"items": len(items),
		}).Info("Search finished")

		for _, item := range items {
			if item.User == nil {
				continue
			}
			occurredAt := item.CreatedAt
			if q.kind == models.ActivityPRMerged {
				merged := item.MergedAt()
				if merged == nil {
					continue
				}
				occurredAt = *merged
			}
			activities = append(activities, models.AttributedActivity{
				Identity:   workers.IdentityFromUser(item.User),
				Type:       q.kind,
				OccurredAt: occurredAt,
				Meta:       models.ActivityMeta{Title: item.Title, Link: item.HTMLURL},
			})

			if q.kind == models.ActivityIssueOpened && !item.IsPullRequest() {
				repo := item.RepoName()
				// windows share their boundary day, so an issue can be returned twice
				key := fmt.Sprintf("%s#%d", repo, item.Number)
				if _, ok := seenIssues[key]; ok {
					continue
				}
				seenIssues[key] = struct{}{}
				issues[repo] = append(issues[repo], workers.IssueRef{
					Number: item.Number,
					Title:  item.Title,
					Link:   item.HTMLURL,
				})
			}
		}
	}
	return activities, issues, nil
}

// enrichNames fills in display names the list endpoints leave out, one lookup per login
func (s *LeaderboardService) enrichNames(ctx context.Context, activities []models.AttributedActivity) {
	names := make(map[string]*string)
	for i := range activities {
		identity := &activities[i].Identity
		if identity.Name != nil {
			continue
		}
		name, ok := names[identity.Login]
		if !ok {
			user, err := s.source.FetchUser(ctx, identity.Login)
			if err != nil {
				logger.WithError(err).WithField("login", identity.Login).Warn("Failed to fetch user details")
			} else if user.GetName() != "" {
				value := user.GetName()
				name = &value
			}
			names[identity.Login] = name
		}
		identity.Name = name
	}
}

// Build produces the artifacts of every period from one set of activities
func (s *LeaderboardService) Build(activities []models.AttributedActivity, now time.Time) []*models.LeaderboardFile {
	files := make([]*models.LeaderboardFile, 0, len(models.Periods()))
	for _, period := range models.Periods() {
		files = append(files, s.BuildPeriod(period, activities, now))
	}
	return files
}

// BuildPeriod scores the activities that happened within the period ending at now
func (s *LeaderboardService) BuildPeriod(period models.Period, activities []models.AttributedActivity, now time.Time) *models.LeaderboardFile {
	now = now.UTC()
	start := now.AddDate(0, 0, -period.Days())

	var opts []scoring.Option
	if s.opts.FoldUsernameCase {
		opts = append(opts, scoring.WithCaseFolding())
	}
	engine := scoring.NewEngine(s.points, s.roles, opts...)
	for _, act := range activities {
		if act.OccurredAt.Before(start) {
			continue
		}
		engine.Record(act)
	}
	engine.DeduplicateAndRecompute()

	entries := engine.Contributors()
	for _, c := range entries {
		s.stats.Enrich(c, now)
	}

	hidden := make([]string, len(s.opts.HiddenRoles))
	copy(hidden, s.opts.HiddenRoles)

	board := &models.LeaderboardFile{
		Period:        period,
		UpdatedAt:     now.UnixMilli(),
		StartDate:     start.Format(time.RFC3339),
		EndDate:       now.Format(time.RFC3339),
		Entries:       entries,
		TopByActivity: TopByActivity(entries, s.opts.TopN),
		HiddenRoles:   hidden,
	}
	board.Normalize()
	return board
}

// TopByActivity ranks contributors per activity type by points, then count, then
// username, keeping at most n. Types nobody performed are left out.
func TopByActivity(entries []*models.Contributor, n int) map[models.ActivityType][]models.TopContributor {
	top := make(map[models.ActivityType][]models.TopContributor)
	for _, activityType := range models.ActivityTypes() {
		var ranked []models.TopContributor
		for _, c := range entries {
			stat, ok := c.ActivityBreakdown[activityType]
			if !ok || stat.Count == 0 {
				continue
			}
			ranked = append(ranked, models.TopContributor{
				Username:  c.Username,
				Name:      c.Name,
				AvatarURL: c.AvatarURL,
				Points:    stat.Points,
				Count:     stat.Count,
			})
		}
		if len(ranked) == 0 {
			continue
		}

		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Points != ranked[j].Points {
				return ranked[i].Points > ranked[j].Points
			}
			if ranked[i].Count != ranked[j].Count {
				return ranked[i].Count > ranked[j].Count
			}
			return ranked[i].Username < ranked[j].Username
		})
		if len(ranked) > n {
			ranked = ranked[:n]
		}
		top[activityType] = ranked
	}
	return top
}
