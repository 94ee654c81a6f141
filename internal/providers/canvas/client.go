package canvas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"canvas-notion-sync/internal/httpx"
)

// Client talks to the Canvas LMS REST API with a bearer token.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Retry   httpx.RetryConfig
	PerPage int
}

// New returns a client that makes one attempt per request. Raise
// Retry.MaxAttempts to opt into httpx backoff.
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP: &http.Client{
			Timeout: 2 * time.Minute,
		},
		Retry:   httpx.SingleAttempt(),
		PerPage: 100,
	}
}

// SourceHTTPError is a non-2xx answer from Canvas.
type SourceHTTPError struct {
	*httpx.HTTPError
}

func (e *SourceHTTPError) Error() string {
	return "canvas: " + e.HTTPError.Error()
}

func (e *SourceHTTPError) Unwrap() error { return e.HTTPError }

// IsNotFound reports whether err is a Canvas 404.
func IsNotFound(err error) bool {
	var serr *SourceHTTPError
	return errors.As(err, &serr) && serr.StatusCode == http.StatusNotFound
}

func (c *Client) apiURL(path string) string {
	return c.BaseURL + "/api/v1" + path
}

// get issues one GET. params are merged into rawURL's own query.
func (c *Client) get(ctx context.Context, rawURL string, params url.Values) (*http.Response, []byte, error) {
	target, err := withParams(rawURL, params)
	if err != nil {
		return nil, nil, err
	}
	resp, body, err := httpx.DoWithRetry(ctx, c.HTTP, c.buildGet(target), c.Retry)
	if err != nil {
		return resp, body, wrapGetErr(target, err)
	}
	return resp, body, nil
}

// getJSON decodes a single-object endpoint into out.
func (c *Client) getJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	target, err := withParams(rawURL, params)
	if err != nil {
		return err
	}
	if err := httpx.DoJSON(ctx, c.HTTP, c.buildGet(target), out, c.Retry); err != nil {
		return wrapGetErr(target, err)
	}
	return nil
}

func (c *Client) buildGet(target string) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		r.Header.Set("Accept", "application/json")
		r.Header.Set("Accept-Encoding", httpx.AcceptEncoding)
		r.Header.Set("Authorization", "Bearer "+c.Token)
		return r, nil
	}
}

func withParams(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("canvas: invalid url %q: %w", rawURL, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func wrapGetErr(target string, err error) error {
	var herr *httpx.HTTPError
	if errors.As(err, &herr) {
		return &SourceHTTPError{HTTPError: herr}
	}
	return fmt.Errorf("canvas: GET %s: %w", target, err)
}

func (c *Client) perPage() url.Values {
	n := c.PerPage
	if n <= 0 {
		n = 100
	}
	return url.Values{"per_page": []string{fmt.Sprintf("%d", n)}}
}
