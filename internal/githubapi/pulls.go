package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
)

// FetchRepoPullRequestsSince lists pull requests of org/repo updated at or after since.
// Pages are requested most recently updated first and paging stops once a page
// ends with a pull request older than since.
func (c *Client) FetchRepoPullRequestsSince(ctx context.Context, org, repo string, since time.Time) ([]*github.PullRequest, error) {
	base := c.url("repos", org, repo, "pulls") + "?state=all&sort=updated&direction=desc"

	var prs []*github.PullRequest
	for page := 1; ; page++ {
		pageURL := withPage(base, page)
		body, header, err := c.get(ctx, "pulls", pageURL)
		if err != nil {
			return nil, err
		}
		if err := c.pause(ctx, "pulls", ThrottleDelay(header.Get(rateLimitRemainingHeader), DefaultPullsDelay)); err != nil {
			return nil, err
		}

		var data []*github.PullRequest
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("decode %s: %w", pageURL, err)
		}
		if len(data) == 0 {
			break
		}

		for _, pr := range data {
			if pr.UpdatedAt != nil && !pr.UpdatedAt.Before(since) {
				prs = append(prs, pr)
			}
		}

		last := data[len(data)-1]
		if last.UpdatedAt != nil && last.UpdatedAt.Before(since) {
			break
		}
		if len(data) < PageSize {
			break
		}
	}

	logger.WithFields(logrus.Fields{
		"repo":  repo,
		"count": len(prs),
		"since": since.Format(time.RFC3339),
	}).Debug("Fetched pull requests")

	return prs, nil
}

// FetchPullRequestReviews lists every review of a pull request
func (c *Client) FetchPullRequestReviews(ctx context.Context, org, repo string, number int) ([]*github.PullRequestReview, error) {
	return FetchAllPages[*github.PullRequestReview](ctx, c, "reviews", c.url("repos", org, repo, "pulls", strconv.Itoa(number), "reviews"))
}

// FetchIssueEvents lists the timeline events (labeled, assigned, closed, ...) of an issue
func (c *Client) FetchIssueEvents(ctx context.Context, org, repo string, number int) ([]*github.IssueEvent, error) {
	return FetchAllPages[*github.IssueEvent](ctx, c, "events", c.url("repos", org, repo, "issues", strconv.Itoa(number), "events"))
}
