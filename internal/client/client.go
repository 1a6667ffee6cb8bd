// Package client is an HTTP client for the leaderboard API.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/okian/abalone/internal/domain/types"
)

const defaultTimeout = 30 * time.Second

// ErrRequest marks transport failures: the server was not reached or the
// response could not be read.
var ErrRequest = errors.New("request failed")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

// Client calls the leaderboard API.
type Client struct {
	http *resty.Client
}

// Option configures a Client.
type Option func(*resty.Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		if d > 0 {
			c.SetTimeout(d)
		}
	}
}

// New returns a client for the server at baseURL, e.g. http://localhost:9080.
func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{http: rc}
}

// Submit uploads a prediction file. members is sent as-is and split by the
// server on commas.
func (c *Client) Submit(ctx context.Context, team, members, fileName string, file io.Reader) (types.UploadResult, error) {
	var (
		out    types.UploadResult
		apiErr errorBody
	)
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"teamName":    team,
			"teamMembers": members,
		}).
		SetFileReader("file", fileName, file).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/upload")
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if res.IsError() {
		return types.UploadResult{}, &APIError{Status: res.StatusCode(), Message: apiErr.Error}
	}
	return out, nil
}

// Leaderboard fetches the ranked submissions.
func (c *Client) Leaderboard(ctx context.Context) ([]types.Entry, error) {
	var (
		entries []types.Entry
		apiErr  errorBody
	)
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&entries).
		SetError(&apiErr).
		Get("/api/leaderboard")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if res.IsError() {
		return nil, &APIError{Status: res.StatusCode(), Message: apiErr.Error}
	}
	return entries, nil
}
