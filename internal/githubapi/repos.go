package githubapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"
)

// FetchOrgRepos returns the repository names of an organization in API order
func (c *Client) FetchOrgRepos(ctx context.Context, org string, includeArchived bool) ([]string, error) {
	repos, err := FetchAllPages[*github.Repository](ctx, c, "repos", c.url("orgs", org, "repos"))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		if repo.GetArchived() && !includeArchived {
			continue
		}
		names = append(names, repo.GetName())
	}
	return names, nil
}

// FetchReleases lists the releases of a repository given as "owner/repo", newest first
func (c *Client) FetchReleases(ctx context.Context, slug string) ([]*github.RepositoryRelease, error) {
	owner, repo, err := ParseRepoFullName(slug)
	if err != nil {
		return nil, err
	}
	return FetchAllPages[*github.RepositoryRelease](ctx, c, "releases", c.url("repos", owner, repo, "releases"))
}

// CompareCommits returns the commits reachable from head but not from base
func (c *Client) CompareCommits(ctx context.Context, slug, base, head string) (*github.CommitsComparison, error) {
	owner, repo, err := ParseRepoFullName(slug)
	if err != nil {
		return nil, err
	}

	comparison, resp, err := c.gh.Repositories.CompareCommits(ctx, owner, repo, base, head, &github.ListOptions{PerPage: PageSize})
	c.observe("compare", resp, err)
	if err != nil {
		return nil, fmt.Errorf("compare %s %s...%s: %w", slug, base, head, fromGoGitHub(err))
	}
	if err := c.pause(ctx, "compare", ThrottleDelay(resp.Header.Get(rateLimitRemainingHeader), DefaultSingleDelay)); err != nil {
		return nil, err
	}
	return comparison, nil
}

// FetchUser returns the full profile of a user, used to fill in display names
func (c *Client) FetchUser(ctx context.Context, login string) (*github.User, error) {
	user, resp, err := c.gh.Users.Get(ctx, login)
	c.observe("users", resp, err)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", login, fromGoGitHub(err))
	}
	if err := c.pause(ctx, "users", ThrottleDelay(resp.Header.Get(rateLimitRemainingHeader), DefaultSingleDelay)); err != nil {
		return nil, err
	}
	return user, nil
}

// ParseRepoFullName splits "owner/repo"
func ParseRepoFullName(fullName string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository name format: %q", fullName)
	}
	return owner, repo, nil
}
