package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultWindowDays is the span of one search window
	DefaultWindowDays = 30
	// DefaultDateField is the search qualifier windows are applied to
	DefaultDateField = "created"

	searchDateLayout = "2006-01-02"
)

// SearchItem is one issue or pull request of an issue search result
type SearchItem struct {
	Number        int              `json:"number"`
	Title         string           `json:"title"`
	HTMLURL       string           `json:"html_url"`
	RepositoryURL string           `json:"repository_url"`
	State         string           `json:"state"`
	CreatedAt     time.Time        `json:"created_at"`
	ClosedAt      *time.Time       `json:"closed_at"`
	User          *github.User     `json:"user"`
	PullRequest   *SearchItemLinks `json:"pull_request"`
}

// SearchItemLinks is present on search items that are pull requests
type SearchItemLinks struct {
	HTMLURL  string     `json:"html_url"`
	MergedAt *time.Time `json:"merged_at"`
}

// IsPullRequest reports whether the item is a pull request
func (i SearchItem) IsPullRequest() bool {
	return i.PullRequest != nil
}

// RepoName returns the repository name from repository_url
func (i SearchItem) RepoName() string {
	idx := strings.LastIndex(i.RepositoryURL, "/")
	if idx < 0 {
		return i.RepositoryURL
	}
	return i.RepositoryURL[idx+1:]
}

// MergedAt returns when a pull request item was merged, falling back to its close time
func (i SearchItem) MergedAt() *time.Time {
	if i.PullRequest != nil && i.PullRequest.MergedAt != nil {
		return i.PullRequest.MergedAt
	}
	return i.ClosedAt
}

type searchPage struct {
	TotalCount        int          `json:"total_count"`
	IncompleteResults bool         `json:"incomplete_results"`
	Items             []SearchItem `json:"items"`
}

// SearchByDateWindows runs query over consecutive windows of windowDays covering
// [start, end). The search API caps results per query, so long ranges are split.
// query uses '+' between qualifiers, e.g. "is:pr+org:acme".
func (c *Client) SearchByDateWindows(ctx context.Context, query string, start, end time.Time, windowDays int, dateField string) ([]SearchItem, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if dateField == "" {
		dateField = DefaultDateField
	}

	var all []SearchItem
	for cursor := start; cursor.Before(end); {
		to := cursor.AddDate(0, 0, windowDays)
		if to.After(end) {
			to = end
		}
		from := cursor.Format(searchDateLayout)
		until := to.Format(searchDateLayout)

		logger.WithFields(logrus.Fields{
			"query": query,
			"from":  from,
			"to":    until,
		}).Info("Searching window")

		base := fmt.Sprintf("%s/search/issues?q=%s+%s:%s..%s", c.baseURL, query, dateField, from, until)
		for page := 1; ; page++ {
			items, err := c.search(ctx, withPage(base, page))
			if err != nil {
				return nil, err
			}
			all = append(all, items...)
			if len(items) < PageSize {
				break
			}
		}

		cursor = to
	}
	return all, nil
}

func (c *Client) search(ctx context.Context, rawURL string) ([]SearchItem, error) {
	body, _, err := c.get(ctx, "search", rawURL)
	if err != nil {
		return nil, err
	}
	if err := c.pause(ctx, "search", c.searchDelay); err != nil {
		return nil, err
	}

	var page searchPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode search %s: %w", rawURL, err)
	}
	return page.Items, nil
}
