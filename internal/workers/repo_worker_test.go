package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu        sync.Mutex
	pulls     map[string][]*github.PullRequest
	reviews   map[int][]*github.PullRequestReview
	events    map[int][]*github.IssueEvent
	pullsErr  map[string]error
	reviewErr error
	calls     []string
}

func (f *fakeSource) FetchRepoPullRequestsSince(_ context.Context, org, repo string, _ time.Time) ([]*github.PullRequest, error) {
	f.mu.Lock()
	f.calls = append(f.calls, org+"/"+repo)
	f.mu.Unlock()
	if err := f.pullsErr[repo]; err != nil {
		return nil, err
	}
	return f.pulls[repo], nil
}

func (f *fakeSource) FetchPullRequestReviews(_ context.Context, _, _ string, number int) ([]*github.PullRequestReview, error) {
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	return f.reviews[number], nil
}

func (f *fakeSource) FetchIssueEvents(_ context.Context, _, _ string, number int) ([]*github.IssueEvent, error) {
	return f.events[number], nil
}

func ts(t time.Time) *github.Timestamp {
	return &github.Timestamp{Time: t}
}

func user(login string) *github.User {
	return &github.User{Login: github.String(login), Type: github.String("User")}
}

var day = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func TestProcessJobPullRequestsAndReviews(t *testing.T) {
	source := &fakeSource{
		pulls: map[string][]*github.PullRequest{
			"widgets": {
				{Number: github.Int(1), Title: github.String("Add feature"), HTMLURL: github.String("https://github.com/acme/widgets/pull/1"), User: user("alice"), MergedAt: ts(day)},
				{Number: github.Int(2), Title: github.String("Open PR"), HTMLURL: github.String("https://github.com/acme/widgets/pull/2"), User: user("bob")},
			},
		},
		reviews: map[int][]*github.PullRequestReview{
			1: {
				{User: user("bob"), State: github.String("APPROVED"), SubmittedAt: ts(day.Add(-time.Hour)), HTMLURL: github.String("https://github.com/acme/widgets/pull/1#review-1")},
				{User: user("carol"), State: github.String("PENDING"), SubmittedAt: ts(day)},
				{User: user("alice"), State: github.String("COMMENTED"), SubmittedAt: ts(day)},
				{User: user("dave"), State: github.String("COMMENTED")},
			},
		},
	}
	worker := NewRepoWorker("repo-1", source, "acme", day.AddDate(0, 0, -7))

	activities, err := worker.ProcessJob(context.Background(), RepoJob{Repo: "widgets"})

	require.NoError(t, err)
	require.Len(t, activities, 2)

	assert.Equal(t, models.ActivityPRMerged, activities[0].Type)
	assert.Equal(t, "alice", activities[0].Identity.Login)
	assert.Equal(t, day, activities[0].OccurredAt)
	assert.Equal(t, "https://github.com/acme/widgets/pull/1", activities[0].Meta.Link)

	assert.Equal(t, models.ActivityReviewSubmitted, activities[1].Type)
	assert.Equal(t, "bob", activities[1].Identity.Login)
	assert.Equal(t, "Add feature", activities[1].Meta.Title)
	assert.Equal(t, "https://github.com/acme/widgets/pull/1#review-1", activities[1].Meta.Link)
}

func TestProcessJobIssueEvents(t *testing.T) {
	source := &fakeSource{
		events: map[int][]*github.IssueEvent{
			5: {
				{Event: github.String("labeled"), Actor: user("carol"), CreatedAt: ts(day)},
				{Event: github.String("assigned"), Actor: user("dave"), CreatedAt: ts(day.Add(time.Minute))},
				{Event: github.String("closed"), Actor: user("carol"), CreatedAt: ts(day.Add(time.Hour))},
				{Event: github.String("referenced"), Actor: user("erin"), CreatedAt: ts(day)},
				{Event: github.String("labeled"), CreatedAt: ts(day)},
			},
		},
	}
	worker := NewRepoWorker("repo-1", source, "acme", day.AddDate(0, 0, -7))

	activities, err := worker.ProcessJob(context.Background(), RepoJob{
		Repo:   "widgets",
		Issues: []IssueRef{{Number: 5, Title: "Crash on start", Link: "https://github.com/acme/widgets/issues/5"}},
	})

	require.NoError(t, err)
	require.Len(t, activities, 3)
	assert.Equal(t, models.ActivityIssueLabeled, activities[0].Type)
	assert.Equal(t, models.ActivityIssueAssigned, activities[1].Type)
	assert.Equal(t, "dave", activities[1].Identity.Login)
	assert.Equal(t, models.ActivityIssueClosed, activities[2].Type)
	for _, act := range activities {
		assert.Equal(t, "Crash on start", act.Meta.Title)
		assert.Equal(t, "https://github.com/acme/widgets/issues/5", act.Meta.Link)
	}
}

func TestProcessJobFailures(t *testing.T) {
	t.Run("Pull request listing fails the job", func(t *testing.T) {
		source := &fakeSource{pullsErr: map[string]error{"widgets": errors.New("boom")}}
		worker := NewRepoWorker("repo-1", source, "acme", day)

		activities, err := worker.ProcessJob(context.Background(), RepoJob{Repo: "widgets"})

		assert.Nil(t, activities)
		assert.ErrorContains(t, err, "acme/widgets")
	})

	t.Run("Review failures only lose reviews", func(t *testing.T) {
		source := &fakeSource{
			pulls: map[string][]*github.PullRequest{
				"widgets": {{Number: github.Int(1), User: user("alice"), MergedAt: ts(day)}},
			},
			reviewErr: errors.New("boom"),
		}
		worker := NewRepoWorker("repo-1", source, "acme", day)

		activities, err := worker.ProcessJob(context.Background(), RepoJob{Repo: "widgets"})

		require.NoError(t, err)
		require.Len(t, activities, 1)
		assert.Equal(t, models.ActivityPRMerged, activities[0].Type)
	})
}

func TestIdentityFromUser(t *testing.T) {
	identity := IdentityFromUser(&github.User{
		Login:     github.String("dependabot[bot]"),
		Name:      github.String(""),
		AvatarURL: github.String("https://avatars.example/1"),
		Type:      github.String("Bot"),
	})

	assert.Equal(t, "dependabot[bot]", identity.Login)
	assert.Nil(t, identity.Name)
	require.NotNil(t, identity.AvatarURL)
	assert.Equal(t, "https://avatars.example/1", *identity.AvatarURL)
	assert.True(t, identity.IsBot())
}
