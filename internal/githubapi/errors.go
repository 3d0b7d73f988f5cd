package githubapi

import (
	"errors"
	"fmt"

	"github.com/google/go-github/v57/github"
)

const maxErrorBody = 512

// UpstreamError is returned when the GitHub API answers with a non-success status
type UpstreamError struct {
	StatusCode int
	Body       string
	URL        string
}

func (e *UpstreamError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("github api %d: %s", e.StatusCode, body)
}

// IsUpstreamStatus reports whether err carries an UpstreamError with the given status
func IsUpstreamStatus(err error, status int) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream) && upstream.StatusCode == status
}

// fromGoGitHub converts go-github's error responses into UpstreamError
func fromGoGitHub(err error) error {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		upstream := &UpstreamError{
			StatusCode: errResp.Response.StatusCode,
			Body:       errResp.Message,
		}
		if errResp.Response.Request != nil {
			upstream.URL = errResp.Response.Request.URL.String()
		}
		return upstream
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return &UpstreamError{
			StatusCode: rateErr.Response.StatusCode,
			Body:       rateErr.Message,
		}
	}
	return err
}
