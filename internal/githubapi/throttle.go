package githubapi

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/alimgiray/leaderboard/internal/metrics"
)

// Pauses applied after successful responses when no rate-limit header is present
const (
	DefaultPageDelay   = 500 * time.Millisecond
	DefaultPullsDelay  = 1000 * time.Millisecond
	DefaultSingleDelay = 300 * time.Millisecond

	// The search API allows 30 requests per minute
	DefaultSearchDelay = 2500 * time.Millisecond
)

const rateLimitRemainingHeader = "X-RateLimit-Remaining"

// Sleeper pauses for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the default Sleeper
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ThrottleDelay maps the remaining request budget to a courtesy pause.
// An absent or unparseable header yields fallback.
func ThrottleDelay(remaining string, fallback time.Duration) time.Duration {
	remaining = strings.TrimSpace(remaining)
	if remaining == "" {
		return fallback
	}
	count, err := strconv.Atoi(remaining)
	if err != nil {
		return fallback
	}
	metrics.GitHubRateRemaining.Set(float64(count))

	switch {
	case count > 500:
		return 200 * time.Millisecond
	case count > 100:
		return 400 * time.Millisecond
	default:
		return 1000 * time.Millisecond
	}
}

func (c *Client) pause(ctx context.Context, endpoint string, d time.Duration) error {
	metrics.GitHubThrottleSeconds.WithLabelValues(endpoint).Add(d.Seconds())
	return c.sleep(ctx, d)
}
