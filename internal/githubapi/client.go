// Package githubapi talks to the GitHub REST API: paginated collections,
// date-windowed search and the typed endpoints of go-github.
package githubapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alimgiray/leaderboard/internal/metrics"
	"github.com/alimgiray/leaderboard/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the public GitHub REST endpoint
const DefaultBaseURL = "https://api.github.com"

const (
	acceptHeader = "application/vnd.github+json"
	userAgent    = "leaderboard-ingest"

	// PageSize is the per_page value of every collection request
	PageSize = 100
)

// Client is a GitHub API client. A Client holds no per-request state and can
// be shared, but ingestion workers each build their own.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	gh          *github.Client
	sleep       Sleeper
	searchDelay time.Duration
	sharedHTTP  bool
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the transport. The bearer token is not applied to it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		c.sharedHTTP = true
	}
}

// WithSleeper replaces the throttle sleep, used by tests to avoid real pauses
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		c.sleep = s
	}
}

// WithSearchDelay overrides the fixed pause applied after every search request
func WithSearchDelay(d time.Duration) Option {
	return func(c *Client) {
		c.searchDelay = d
	}
}

// NewClient creates a client for baseURL authenticated with token.
// An empty token yields anonymous requests.
func NewClient(token, baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	c := &Client{
		baseURL:     baseURL,
		token:       token,
		sleep:       ContextSleep,
		searchDelay: DefaultSearchDelay,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = newHTTPClient(token)
	}

	gh := github.NewClient(c.httpClient)
	apiURL, err := url.Parse(baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("parse github api url %q: %w", baseURL, err)
	}
	gh.BaseURL = apiURL
	gh.UserAgent = userAgent
	c.gh = gh

	return c, nil
}

// Clone returns an independent client with the same settings. The transport
// is rebuilt unless it was supplied through WithHTTPClient.
func (c *Client) Clone() *Client {
	clone := *c
	if !c.sharedHTTP {
		clone.httpClient = newHTTPClient(c.token)
	}
	clone.gh = github.NewClient(clone.httpClient)
	clone.gh.BaseURL = c.gh.BaseURL
	clone.gh.UserAgent = userAgent
	return &clone
}

// BaseURL returns the API root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

func newHTTPClient(token string) *http.Client {
	if token == "" {
		return &http.Client{}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return oauth2.NewClient(context.Background(), ts)
}

// get issues one GET request and returns the body of a 2xx response
func (c *Client) get(ctx context.Context, endpoint, rawURL string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.GitHubRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, nil, fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	metrics.GitHubRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response %s: %w", rawURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.WithFields(logrus.Fields{
			"status":   resp.StatusCode,
			"url":      rawURL,
			"endpoint": endpoint,
		}).Warn("GitHub API request failed")
		return nil, nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body), URL: rawURL}
	}

	return body, resp.Header, nil
}

// url joins escaped path segments onto the API root
func (c *Client) url(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, segment := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}
	return b.String()
}

// withPage appends the pagination parameters to rawURL
func withPage(rawURL string, page int) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sper_page=%d&page=%d", rawURL, sep, PageSize, page)
}

// observe records a go-github call in the request metrics
func (c *Client) observe(endpoint string, resp *github.Response, err error) {
	status := "error"
	if resp != nil && resp.Response != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.GitHubRequests.WithLabelValues(endpoint, status).Inc()
	if err != nil {
		logger.WithError(err).WithField("endpoint", endpoint).Warn("GitHub API request failed")
	}
}
