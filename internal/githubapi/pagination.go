package githubapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/sirupsen/logrus"
)

// FetchAllPages follows per_page/page pagination of a JSON array endpoint until a
// page holds fewer than PageSize items. Pages are concatenated in request order.
// On any failure nothing is returned.
func FetchAllPages[T any](ctx context.Context, c *Client, endpoint, rawURL string) ([]T, error) {
	var results []T
	for page := 1; ; page++ {
		pageURL := withPage(rawURL, page)
		body, header, err := c.get(ctx, endpoint, pageURL)
		if err != nil {
			return nil, err
		}

		if err := c.pause(ctx, endpoint, ThrottleDelay(header.Get(rateLimitRemainingHeader), DefaultPageDelay)); err != nil {
			return nil, err
		}

		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", pageURL, err)
		}
		results = append(results, items...)

		logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"page":     page,
			"items":    len(items),
		}).Debug("Fetched page")

		if len(items) < PageSize {
			return results, nil
		}
	}
}
