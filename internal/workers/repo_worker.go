package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
)

// RepoSource is the part of the GitHub client a repository worker needs
type RepoSource interface {
	FetchRepoPullRequestsSince(ctx context.Context, org, repo string, since time.Time) ([]*github.PullRequest, error)
	FetchPullRequestReviews(ctx context.Context, org, repo string, number int) ([]*github.PullRequestReview, error)
	FetchIssueEvents(ctx context.Context, org, repo string, number int) ([]*github.IssueEvent, error)
}

var _ Worker = (*RepoWorker)(nil)

const reviewStatePending = "PENDING"

// issueEventTypes maps issue timeline events onto scored activity types
var issueEventTypes = map[string]models.ActivityType{
	"labeled":  models.ActivityIssueLabeled,
	"assigned": models.ActivityIssueAssigned,
	"closed":   models.ActivityIssueClosed,
}

// RepoWorker turns the pull requests, reviews and issue events of a repository
// into attributed activities
type RepoWorker struct {
	*BaseWorker
	source RepoSource
	org    string
	since  time.Time
}

// NewRepoWorker creates a worker that owns source exclusively
func NewRepoWorker(workerID string, source RepoSource, org string, since time.Time) *RepoWorker {
	return &RepoWorker{
		BaseWorker: NewBaseWorker(workerID),
		source:     source,
		org:        org,
		since:      since,
	}
}

// Start begins the repository worker process
func (w *RepoWorker) Start(ctx context.Context, jobs <-chan RepoJob, results chan<- RepoResult) error {
	w.setRunning(true)
	defer w.setRunning(false)
	logger.WithField("worker", w.WorkerID).Debug("Repository worker started")

	for {
		select {
		case <-ctx.Done():
			logger.WithField("worker", w.WorkerID).Debug("Repository worker stopping due to context cancellation")
			return ctx.Err()
		case job, ok := <-jobs:
			if !ok {
				return nil
			}
			activities, err := w.ProcessJob(ctx, job)
			results <- RepoResult{Index: job.Index, Repo: job.Repo, Activities: activities, Err: err}
		}
	}
}

// ProcessJob ingests one repository. A failing pull request listing fails the job;
// failing review or event fetches only lose that pull request's or issue's activities.
func (w *RepoWorker) ProcessJob(ctx context.Context, job RepoJob) ([]models.AttributedActivity, error) {
	log := logger.WithFields(logrus.Fields{
		"worker": w.WorkerID,
		"repo":   job.Repo,
	})
	log.Info("Processing repository")

	pullRequests, err := w.source.FetchRepoPullRequestsSince(ctx, w.org, job.Repo, w.since)
	if err != nil {
		return nil, fmt.Errorf("fetch pull requests for %s/%s: %w", w.org, job.Repo, err)
	}

	var activities []models.AttributedActivity
	totalReviews := 0
	for _, pr := range pullRequests {
		if merged, ok := mergedActivity(pr); ok {
			activities = append(activities, merged)
		}

		reviews, err := w.source.FetchPullRequestReviews(ctx, w.org, job.Repo, pr.GetNumber())
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithError(err).WithField("pr", pr.GetNumber()).Warn("Failed to fetch reviews")
			continue
		}
		for _, review := range reviews {
			if act, ok := reviewActivity(pr, review); ok {
				activities = append(activities, act)
				totalReviews++
			}
		}
	}

	totalEvents := 0
	for _, issue := range job.Issues {
		events, err := w.source.FetchIssueEvents(ctx, w.org, job.Repo, issue.Number)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithError(err).WithField("issue", issue.Number).Warn("Failed to fetch issue events")
			continue
		}
		for _, event := range events {
			if act, ok := issueEventActivity(issue, event); ok {
				activities = append(activities, act)
				totalEvents++
			}
		}
	}

	log.WithFields(logrus.Fields{
		"pull_requests": len(pullRequests),
		"reviews":       totalReviews,
		"issue_events":  totalEvents,
	}).Info("Repository processed")

	return activities, nil
}

func mergedActivity(pr *github.PullRequest) (models.AttributedActivity, bool) {
	if pr.MergedAt == nil || pr.MergedAt.IsZero() || pr.User == nil {
		return models.AttributedActivity{}, false
	}
	return models.AttributedActivity{
		Identity:   IdentityFromUser(pr.User),
		Type:       models.ActivityPRMerged,
		OccurredAt: pr.MergedAt.Time,
		Meta:       models.ActivityMeta{Title: pr.GetTitle(), Link: pr.GetHTMLURL()},
	}, true
}

func reviewActivity(pr *github.PullRequest, review *github.PullRequestReview) (models.AttributedActivity, bool) {
	if review.User == nil || review.SubmittedAt == nil || review.SubmittedAt.IsZero() {
		return models.AttributedActivity{}, false
	}
	if strings.EqualFold(review.GetState(), reviewStatePending) {
		return models.AttributedActivity{}, false
	}
	if pr.User != nil && review.User.GetLogin() == pr.User.GetLogin() {
		return models.AttributedActivity{}, false
	}

	link := review.GetHTMLURL()
	if link == "" {
		link = pr.GetHTMLURL()
	}
	return models.AttributedActivity{
		Identity:   IdentityFromUser(review.User),
		Type:       models.ActivityReviewSubmitted,
		OccurredAt: review.SubmittedAt.Time,
		Meta:       models.ActivityMeta{Title: pr.GetTitle(), Link: link},
	}, true
}

func issueEventActivity(issue IssueRef, event *github.IssueEvent) (models.AttributedActivity, bool) {
	activityType, ok := issueEventTypes[event.GetEvent()]
	if !ok || event.Actor == nil || event.CreatedAt == nil || event.CreatedAt.IsZero() {
		return models.AttributedActivity{}, false
	}
	return models.AttributedActivity{
		Identity:   IdentityFromUser(event.Actor),
		Type:       activityType,
		OccurredAt: event.CreatedAt.Time,
		Meta:       models.ActivityMeta{Title: issue.Title, Link: issue.Link},
	}, true
}

// IdentityFromUser converts a GitHub user into the identity the scoring engine keys on
func IdentityFromUser(user *github.User) models.Identity {
	identity := models.Identity{
		Login: user.GetLogin(),
		Type:  user.GetType(),
	}
	if user.Name != nil && *user.Name != "" {
		name := user.GetName()
		identity.Name = &name
	}
	if user.AvatarURL != nil && *user.AvatarURL != "" {
		avatar := user.GetAvatarURL()
		identity.AvatarURL = &avatar
	}
	return identity
}
