package services

import (
	"context"
	"sort"
	"strings"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/alimgiray/leaderboard/pkg/store"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
)

// DefaultReleaseSummary is used when a release has no notes
const DefaultReleaseSummary = "This release includes internal improvements, bug fixes, and contributor updates."

const maxReleaseContributors = 5

// ReleaseSource is the part of the GitHub client the release feed needs
type ReleaseSource interface {
	FetchReleases(ctx context.Context, slug string) ([]*github.RepositoryRelease, error)
	CompareCommits(ctx context.Context, slug, base, head string) (*github.CommitsComparison, error)
}

type ReleaseService struct {
	source ReleaseSource
	store  *store.Store
	repos  []models.TrackedRepository
}

func NewReleaseService(source ReleaseSource, artifacts *store.Store, repos []models.TrackedRepository) *ReleaseService {
	return &ReleaseService{
		source: source,
		store:  artifacts,
		repos:  repos,
	}
}

// Generate builds the release feed of every tracked repository and writes it.
// A repository whose releases cannot be listed is left out.
func (s *ReleaseService) Generate(ctx context.Context) ([]models.Release, error) {
	releases := make([]models.Release, 0)
	for _, repo := range s.repos {
		repoReleases, err := s.source.FetchReleases(ctx, repo.Slug)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.WithError(err).WithField("repo", repo.Slug).Error("Failed to fetch releases")
			continue
		}
		releases = append(releases, s.buildReleases(ctx, repo, repoReleases)...)
	}

	if err := s.store.WriteReleases(releases); err != nil {
		return nil, err
	}
	logger.WithField("releases", len(releases)).Info("Releases generated")
	return releases, nil
}

// buildReleases expects releases newest first, as the API lists them
func (s *ReleaseService) buildReleases(ctx context.Context, repo models.TrackedRepository, releases []*github.RepositoryRelease) []models.Release {
	var out []models.Release
	for i, current := range releases {
		if current.GetDraft() {
			continue
		}

		var previous *github.RepositoryRelease
		for _, candidate := range releases[i+1:] {
			if !candidate.GetDraft() {
				previous = candidate
				break
			}
		}

		contributors := make([]models.ReleaseContributor, 0)
		if previous != nil {
			comparison, err := s.source.CompareCommits(ctx, repo.Slug, previous.GetTagName(), current.GetTagName())
			if err != nil {
				logger.WithError(err).WithFields(logrus.Fields{
					"repo": repo.Slug,
					"base": previous.GetTagName(),
					"head": current.GetTagName(),
				}).Warn("Failed to compare releases")
			} else {
				contributors = TopCommitAuthors(comparison.Commits, maxReleaseContributors)
			}
		}

		date := ""
		if current.PublishedAt != nil {
			date = current.PublishedAt.UTC().Format("2006-01-02")
		}

		out = append(out, models.Release{
			Repo:         repo.Name,
			RepoSlug:     repo.Slug,
			Version:      current.GetTagName(),
			Date:         date,
			Summary:      ReleaseSummary(current.GetBody()),
			Contributors: contributors,
			GithubURL:    current.GetHTMLURL(),
		})
	}
	return out
}

// TopCommitAuthors counts commits per author login, skipping bots and commits
// without a linked account, and keeps the n most active
func TopCommitAuthors(commits []*github.RepositoryCommit, n int) []models.ReleaseContributor {
	counts := make(map[string]int)
	for _, commit := range commits {
		author := commit.GetAuthor()
		if author == nil || author.GetLogin() == "" {
			continue
		}
		if author.GetType() == "Bot" || strings.HasSuffix(strings.ToLower(author.GetLogin()), "[bot]") {
			continue
		}
		counts[author.GetLogin()]++
	}

	contributors := make([]models.ReleaseContributor, 0, len(counts))
	for username, commits := range counts {
		contributors = append(contributors, models.ReleaseContributor{Username: username, Commits: commits})
	}
	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].Commits != contributors[j].Commits {
			return contributors[i].Commits > contributors[j].Commits
		}
		return contributors[i].Username < contributors[j].Username
	})
	if len(contributors) > n {
		contributors = contributors[:n]
	}
	return contributors
}

// ReleaseSummary returns the first non-blank line of the release notes
func ReleaseSummary(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return DefaultReleaseSummary
}
