package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	require.NoError(t, Load(""))

	assert.Equal(t, "8080", AppConfig.Server.Port)
	assert.Equal(t, "https://api.github.com", AppConfig.GitHub.APIURL)
	assert.Equal(t, 30, AppConfig.GitHub.SearchWindowDays)
	assert.Equal(t, 1, AppConfig.GitHub.Workers)
	assert.Equal(t, 3, AppConfig.Leaderboard.TopN)
	assert.Equal(t, []string{"Maintainer"}, AppConfig.Leaderboard.HiddenRoles)
	assert.True(t, AppConfig.Leaderboard.SkipFailedRepos)
	assert.False(t, AppConfig.Leaderboard.FoldUsernameCase)
	assert.Equal(t, 6*time.Hour, AppConfig.Scheduler.Interval)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GITHUB_ORG", "CircuitVerse")
	t.Setenv("GITHUB_TOKEN", "secret")
	t.Setenv("GITHUB_API_URL", "http://localhost:9999/")
	t.Setenv("GITHUB_REPOS", "cv-frontend-vue, Mobile-App")
	t.Setenv("GITHUB_WORKERS", "0")
	t.Setenv("LEADERBOARD_HIDDEN_ROLES", "Maintainer,Alumni")
	t.Setenv("LEADERBOARD_FOLD_USERNAME_CASE", "true")
	t.Setenv("SCHEDULER_INTERVAL", "30m")

	require.NoError(t, Load(""))

	assert.Equal(t, "CircuitVerse", AppConfig.GitHub.Org)
	assert.Equal(t, "secret", AppConfig.GitHub.Token)
	assert.Equal(t, "http://localhost:9999", AppConfig.GitHub.APIURL)
	assert.Equal(t, []string{"cv-frontend-vue", "Mobile-App"}, AppConfig.GitHub.Repos)
	assert.Equal(t, 1, AppConfig.GitHub.Workers)
	assert.Equal(t, []string{"Maintainer", "Alumni"}, AppConfig.Leaderboard.HiddenRoles)
	assert.True(t, AppConfig.Leaderboard.FoldUsernameCase)
	assert.Equal(t, 30*time.Minute, AppConfig.Scheduler.Interval)
	assert.NoError(t, AppConfig.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leaderboard.yaml")
	content := `
github:
  org: CircuitVerse
  repos:
    - CircuitVerse
    - cv-frontend-vue
leaderboard:
  top_n: 5
releases:
  repos:
    - name: Mobile App
      slug: CircuitVerse/Mobile-App
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.NoError(t, Load(path))

	assert.Equal(t, "CircuitVerse", AppConfig.GitHub.Org)
	assert.Equal(t, []string{"CircuitVerse", "cv-frontend-vue"}, AppConfig.GitHub.Repos)
	assert.Equal(t, 5, AppConfig.Leaderboard.TopN)
	assert.Equal(t, []models.TrackedRepository{{Name: "Mobile App", Slug: "CircuitVerse/Mobile-App"}}, AppConfig.Releases.Repos)
}

func TestLoadMissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Leaderboard: LeaderboardConfig{OutputDir: "./public"}}
	assert.ErrorIs(t, cfg.Validate(), ErrMissingOrg)

	cfg.GitHub.Org = "CircuitVerse"
	assert.NoError(t, cfg.Validate())
}

func TestLoadTeam(t *testing.T) {
	t.Run("Missing file yields empty team", func(t *testing.T) {
		team, err := LoadTeam(filepath.Join(t.TempDir(), "team.yaml"))
		require.NoError(t, err)
		assert.Empty(t, team.Maintainers)
		assert.Empty(t, team.Alumni)
	})

	t.Run("Parses membership lists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "team.yaml")
		require.NoError(t, os.WriteFile(path, []byte("maintainers:\n  - Alice\nalumni:\n  - bob\n  - carol\n"), 0o644))

		team, err := LoadTeam(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Alice"}, team.Maintainers)
		assert.Equal(t, []string{"bob", "carol"}, team.Alumni)
	})

	t.Run("Invalid YAML is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "team.yaml")
		require.NoError(t, os.WriteFile(path, []byte("maintainers: [unclosed"), 0o644))

		_, err := LoadTeam(path)
		assert.Error(t, err)
	})
}
