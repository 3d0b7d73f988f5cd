package scoring

import (
	"testing"
	"time"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(opts ...Option) *Engine {
	team := models.Team{
		Maintainers: []string{"CoreDev"},
		Alumni:      []string{"oldtimer"},
	}
	return NewEngine(models.DefaultPoints(), NewRoleClassifier(team), opts...)
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestEnsureContributor(t *testing.T) {
	t.Run("Creates a new contributor", func(t *testing.T) {
		engine := newTestEngine()
		name := "Test User"

		entry := engine.EnsureContributor(models.Identity{Login: "testuser", Name: &name})

		assert.Equal(t, "testuser", entry.Username)
		assert.Equal(t, 0, entry.TotalPoints)
		assert.Equal(t, models.RoleContributor, entry.Role)
		assert.Equal(t, 1, engine.Len())
	})

	t.Run("Returns the existing contributor", func(t *testing.T) {
		engine := newTestEngine()
		first := engine.EnsureContributor(models.Identity{Login: "testuser"})
		first.TotalPoints = 10

		second := engine.EnsureContributor(models.Identity{Login: "testuser"})

		assert.Same(t, first, second)
		assert.Equal(t, 10, second.TotalPoints)
	})

	t.Run("Classifies roles case-insensitively", func(t *testing.T) {
		engine := newTestEngine()

		assert.Equal(t, models.RoleMaintainer, engine.EnsureContributor(models.Identity{Login: "coredev"}).Role)
		assert.Equal(t, models.RoleAlumni, engine.EnsureContributor(models.Identity{Login: "OldTimer"}).Role)
		assert.Equal(t, models.RoleContributor, engine.EnsureContributor(models.Identity{Login: "newcomer"}).Role)
	})

	t.Run("Registry keys are case-sensitive by default", func(t *testing.T) {
		engine := newTestEngine()
		engine.EnsureContributor(models.Identity{Login: "Alice"})
		engine.EnsureContributor(models.Identity{Login: "alice"})

		assert.Equal(t, 2, engine.Len())
	})

	t.Run("Case folding merges logins", func(t *testing.T) {
		engine := newTestEngine(WithCaseFolding())
		first := engine.EnsureContributor(models.Identity{Login: "Alice"})
		second := engine.EnsureContributor(models.Identity{Login: "alice"})

		assert.Same(t, first, second)
		assert.Equal(t, "Alice", second.Username)
	})
}

func TestRecordActivity(t *testing.T) {
	engine := newTestEngine()
	user := engine.EnsureContributor(models.Identity{Login: "testuser"})

	engine.RecordActivity(user, models.ActivityPROpened, mustTime(t, "2023-01-01T10:00:00Z"), 2, models.ActivityMeta{
		Title: "[Feature]:   add   dark mode ",
		Link:  "https://github.com/org/repo/pull/1",
	})
	engine.RecordActivity(user, models.ActivityReviewSubmitted, mustTime(t, "2023-01-01T18:30:00Z"), 4, models.ActivityMeta{})
	engine.RecordActivity(user, models.ActivityPROpened, mustTime(t, "2023-01-02T09:00:00Z"), 2, models.ActivityMeta{})

	assert.Equal(t, 8, user.TotalPoints)
	require.Len(t, user.RawActivities, 3)
	assert.Equal(t, 2, user.ActivityBreakdown[models.ActivityPROpened].Count)
	assert.Equal(t, 4, user.ActivityBreakdown[models.ActivityPROpened].Points)
	assert.Equal(t, 1, user.ActivityBreakdown[models.ActivityReviewSubmitted].Count)

	require.NotNil(t, user.RawActivities[0].Title)
	assert.Equal(t, "Feature - add dark mode", *user.RawActivities[0].Title)
	require.NotNil(t, user.RawActivities[0].Link)
	assert.Nil(t, user.RawActivities[1].Title)
	assert.Nil(t, user.RawActivities[1].Link)

	require.Len(t, user.DailyActivity, 2)
	assert.Equal(t, models.DailyActivity{Date: "2023-01-01", Count: 2, Points: 6}, user.DailyActivity[0])
	assert.Equal(t, models.DailyActivity{Date: "2023-01-02", Count: 1, Points: 2}, user.DailyActivity[1])
}

func TestRecordBucketsByUTCDay(t *testing.T) {
	engine := newTestEngine()
	user := engine.EnsureContributor(models.Identity{Login: "testuser"})

	// 23:30 at UTC-5 is already the next day in UTC
	engine.RecordActivity(user, models.ActivityIssueOpened, mustTime(t, "2023-03-10T23:30:00-05:00"), 1, models.ActivityMeta{})

	require.Len(t, user.DailyActivity, 1)
	assert.Equal(t, "2023-03-11", user.DailyActivity[0].Date)
}

func TestDeduplicateAndRecompute(t *testing.T) {
	t.Run("Removes duplicate activities and recalculates points", func(t *testing.T) {
		engine := newTestEngine()
		user := engine.EnsureContributor(models.Identity{Login: "testuser"})
		merged := mustTime(t, "2023-01-01T12:00:00Z")

		engine.RecordActivity(user, models.ActivityPRMerged, merged, 5, models.ActivityMeta{Link: "http://pr/1"})
		engine.RecordActivity(user, models.ActivityPRMerged, merged, 5, models.ActivityMeta{Link: "http://pr/1"})
		assert.Equal(t, 10, user.TotalPoints)

		engine.DeduplicateAndRecompute()

		assert.Equal(t, 5, user.TotalPoints)
		assert.Len(t, user.RawActivities, 1)
		assert.Equal(t, 1, user.ActivityBreakdown[models.ActivityPRMerged].Count)
		assert.Equal(t, []models.DailyActivity{{Date: "2023-01-01", Count: 1, Points: 5}}, user.DailyActivity)
	})

	t.Run("Falls back to title when link is missing", func(t *testing.T) {
		engine := newTestEngine()
		user := engine.EnsureContributor(models.Identity{Login: "testuser"})
		at := mustTime(t, "2023-01-01T12:00:00Z")

		engine.RecordActivity(user, models.ActivityIssueOpened, at, 1, models.ActivityMeta{Title: "Crash: on load"})
		engine.RecordActivity(user, models.ActivityIssueOpened, at, 1, models.ActivityMeta{Title: "Crash: on load"})
		engine.RecordActivity(user, models.ActivityIssueOpened, at, 1, models.ActivityMeta{Title: "Another crash"})

		engine.DeduplicateAndRecompute()

		assert.Equal(t, 2, user.TotalPoints)
		assert.Len(t, user.RawActivities, 2)
	})

	t.Run("Keeps same link with different type or instant", func(t *testing.T) {
		engine := newTestEngine()
		user := engine.EnsureContributor(models.Identity{Login: "testuser"})
		link := models.ActivityMeta{Link: "http://pr/1"}

		engine.RecordActivity(user, models.ActivityPROpened, mustTime(t, "2023-01-01T12:00:00Z"), 2, link)
		engine.RecordActivity(user, models.ActivityPRMerged, mustTime(t, "2023-01-01T12:00:00Z"), 5, link)
		engine.RecordActivity(user, models.ActivityPRMerged, mustTime(t, "2023-01-03T12:00:00Z"), 5, link)

		engine.DeduplicateAndRecompute()

		assert.Equal(t, 12, user.TotalPoints)
		assert.Len(t, user.RawActivities, 3)
	})

	t.Run("Same instant in another zone is a duplicate", func(t *testing.T) {
		engine := newTestEngine()
		user := engine.EnsureContributor(models.Identity{Login: "testuser"})
		link := models.ActivityMeta{Link: "http://pr/7"}

		engine.RecordActivity(user, models.ActivityPRMerged, mustTime(t, "2023-01-01T12:00:00Z"), 5, link)
		engine.RecordActivity(user, models.ActivityPRMerged, mustTime(t, "2023-01-01T14:00:00+02:00"), 5, link)

		engine.DeduplicateAndRecompute()

		assert.Len(t, user.RawActivities, 1)
	})

	t.Run("Preserves first-seen order and sorts days newest first", func(t *testing.T) {
		engine := newTestEngine()
		user := engine.EnsureContributor(models.Identity{Login: "testuser"})

		engine.RecordActivity(user, models.ActivityPROpened, mustTime(t, "2023-01-05T12:00:00Z"), 2, models.ActivityMeta{Link: "a"})
		engine.RecordActivity(user, models.ActivityPROpened, mustTime(t, "2023-01-01T12:00:00Z"), 2, models.ActivityMeta{Link: "b"})
		engine.RecordActivity(user, models.ActivityPROpened, mustTime(t, "2023-01-05T12:00:00Z"), 2, models.ActivityMeta{Link: "a"})
		engine.RecordActivity(user, models.ActivityPROpened, mustTime(t, "2023-01-03T12:00:00Z"), 2, models.ActivityMeta{Link: "c"})

		engine.DeduplicateAndRecompute()

		links := make([]string, 0, len(user.RawActivities))
		for _, act := range user.RawActivities {
			links = append(links, *act.Link)
		}
		assert.Equal(t, []string{"a", "b", "c"}, links)

		dates := make([]string, 0, len(user.DailyActivity))
		for _, day := range user.DailyActivity {
			dates = append(dates, day.Date)
		}
		assert.Equal(t, []string{"2023-01-05", "2023-01-03", "2023-01-01"}, dates)
	})
}

func TestRecomputeIsIdempotent(t *testing.T) {
	engine := newTestEngine()
	seedMixedActivity(t, engine)

	engine.DeduplicateAndRecompute()
	first := snapshot(engine)

	engine.DeduplicateAndRecompute()
	second := snapshot(engine)

	assert.Equal(t, first, second)
}

func TestAggregatesMatchRawActivities(t *testing.T) {
	engine := newTestEngine()
	seedMixedActivity(t, engine)

	engine.DeduplicateAndRecompute()

	for _, contributor := range engine.Contributors() {
		rawPoints := 0
		for _, act := range contributor.RawActivities {
			rawPoints += act.Points
		}
		assert.Equal(t, rawPoints, contributor.TotalPoints, contributor.Username)

		breakdownPoints, breakdownCount := 0, 0
		for activityType, stat := range contributor.ActivityBreakdown {
			breakdownPoints += stat.Points
			breakdownCount += stat.Count

			typeCount := 0
			for _, act := range contributor.RawActivities {
				if act.Type == activityType {
					typeCount++
				}
			}
			assert.Equal(t, typeCount, stat.Count)
		}
		assert.Equal(t, contributor.TotalPoints, breakdownPoints)
		assert.Equal(t, len(contributor.RawActivities), breakdownCount)

		dailyPoints, dailyCount := 0, 0
		days := make(map[string]bool)
		for _, day := range contributor.DailyActivity {
			assert.False(t, days[day.Date], "duplicate day %s", day.Date)
			days[day.Date] = true
			dailyPoints += day.Points
			dailyCount += day.Count
		}
		assert.Equal(t, contributor.TotalPoints, dailyPoints)
		assert.Equal(t, len(contributor.RawActivities), dailyCount)

		keys := make(map[string]bool)
		for _, act := range contributor.RawActivities {
			key := DedupKey(act)
			assert.False(t, keys[key], "duplicate key %s", key)
			keys[key] = true
		}
	}
}

func TestRecordUsesPointsTable(t *testing.T) {
	engine := newTestEngine()
	identity := models.Identity{Login: "reviewer"}

	engine.Record(models.AttributedActivity{Identity: identity, Type: models.ActivityReviewSubmitted, OccurredAt: mustTime(t, "2023-02-01T10:00:00Z")})
	contributor := engine.Record(models.AttributedActivity{Identity: identity, Type: models.ActivityIssueLabeled, OccurredAt: mustTime(t, "2023-02-01T11:00:00Z")})

	assert.Equal(t, 6, contributor.TotalPoints)
}

func TestContributorsOrdering(t *testing.T) {
	engine := newTestEngine()
	at := mustTime(t, "2023-02-01T10:00:00Z")

	engine.Record(models.AttributedActivity{Identity: models.Identity{Login: "bob"}, Type: models.ActivityPROpened, OccurredAt: at})
	engine.Record(models.AttributedActivity{Identity: models.Identity{Login: "alice"}, Type: models.ActivityPROpened, OccurredAt: at})
	engine.Record(models.AttributedActivity{Identity: models.Identity{Login: "carol"}, Type: models.ActivityPRMerged, OccurredAt: at})

	contributors := engine.Contributors()
	require.Len(t, contributors, 3)
	assert.Equal(t, "carol", contributors[0].Username)
	assert.Equal(t, "alice", contributors[1].Username)
	assert.Equal(t, "bob", contributors[2].Username)
}

func seedMixedActivity(t *testing.T, engine *Engine) {
	t.Helper()
	records := []models.AttributedActivity{
		{Identity: models.Identity{Login: "alice"}, Type: models.ActivityPROpened, OccurredAt: mustTime(t, "2023-01-01T09:00:00Z"), Meta: models.ActivityMeta{Link: "http://pr/1"}},
		{Identity: models.Identity{Login: "alice"}, Type: models.ActivityPRMerged, OccurredAt: mustTime(t, "2023-01-02T09:00:00Z"), Meta: models.ActivityMeta{Link: "http://pr/1"}},
		{Identity: models.Identity{Login: "alice"}, Type: models.ActivityPRMerged, OccurredAt: mustTime(t, "2023-01-02T09:00:00Z"), Meta: models.ActivityMeta{Link: "http://pr/1"}},
		{Identity: models.Identity{Login: "bob"}, Type: models.ActivityReviewSubmitted, OccurredAt: mustTime(t, "2023-01-02T10:00:00Z"), Meta: models.ActivityMeta{Link: "http://pr/1#review-1"}},
		{Identity: models.Identity{Login: "bob"}, Type: models.ActivityIssueLabeled, OccurredAt: mustTime(t, "2023-01-03T10:00:00Z"), Meta: models.ActivityMeta{Title: "Bug"}},
		{Identity: models.Identity{Login: "bob"}, Type: models.ActivityIssueLabeled, OccurredAt: mustTime(t, "2023-01-03T10:00:00Z"), Meta: models.ActivityMeta{Title: "Bug"}},
		{Identity: models.Identity{Login: "bob"}, Type: models.ActivityIssueClosed, OccurredAt: mustTime(t, "2023-01-05T10:00:00Z"), Meta: models.ActivityMeta{Link: "http://issue/4"}},
	}
	for _, record := range records {
		engine.Record(record)
	}
}

func snapshot(engine *Engine) map[string]models.Contributor {
	out := make(map[string]models.Contributor)
	for key, contributor := range engine.Registry() {
		copied := *contributor
		breakdown := make(map[models.ActivityType]*models.ActivityStat)
		for activityType, stat := range contributor.ActivityBreakdown {
			statCopy := *stat
			breakdown[activityType] = &statCopy
		}
		copied.ActivityBreakdown = breakdown
		copied.DailyActivity = append([]models.DailyActivity(nil), contributor.DailyActivity...)
		copied.RawActivities = append([]models.RawActivity(nil), contributor.RawActivities...)
		out[key] = copied
	}
	return out
}
