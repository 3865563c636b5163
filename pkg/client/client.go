// Package client is the Go SDK for the trilemma dashboard JSON API.
package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

const Version = "0.1.0"

// Logger is satisfied by most printf-style loggers.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}

// Client talks to one dashboard server.  It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     Logger

	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

// NewClient creates a Client for a server root such as
// "http://localhost:8050".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if err := checkBaseURL(baseURL); err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		userAgent:    "trilemma-go-sdk/" + Version,
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func checkBaseURL(raw string) error {
	if raw == "" {
		return errors.New(errors.ErrCodeValidation, "client: base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "client: malformed base URL").WithDetail(raw)
	}
	switch u.Scheme {
	case "http", "https":
		return nil
	default:
		return errors.New(errors.ErrCodeValidation, "client: base URL must use http or https").WithDetail(raw)
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) endpoint(path string, query url.Values) string {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// response is one completed round trip.
type response struct {
	status    int
	header    http.Header
	body      []byte
	requestID string
}

// roundTrip sends a single GET, tagging it with a fresh X-Request-ID.
func (c *Client) roundTrip(ctx context.Context, target string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "client: cannot build request").WithDetail(target)
	}
	id := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", id)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "client: truncated response body")
	}
	c.logger.Debugf("GET %s -> %d in %v", req.URL.Path, resp.StatusCode, time.Since(start))
	return &response{status: resp.StatusCode, header: resp.Header, body: body, requestID: id}, nil
}

// get runs roundTrip under the retry policy and returns the body of the
// first 2xx answer.  Transport failures and 5xx answers are retried with
// backoff; a 429 is retried only when the server names a Retry-After.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.endpoint(path, query)
	var (
		lastErr error
		wait    time.Duration
	)
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			if wait == 0 {
				wait = c.calculateBackoff(attempt)
			}
			c.logger.Debugf("retry %d of %s in %v", attempt, path, wait)
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
			wait = 0
		}

		resp, err := c.roundTrip(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if _, ok := err.(*errors.AppError); ok {
				return nil, err
			}
			c.logger.Errorf("GET %s failed: %v", path, err)
			lastErr = errors.Wrap(err, errors.ErrCodeServiceUnavailable, "client: request failed").WithDetail(path)
			continue
		}
		if resp.status < http.StatusBadRequest {
			return resp.body, nil
		}

		apiErr := parseAPIError(resp)
		lastErr = apiErr
		switch {
		case apiErr.IsServerError():
			continue
		case apiErr.IsRateLimited() && attempt < c.retryMax:
			if d, ok := retryAfter(resp.header); ok {
				c.logger.Infof("rate limited on %s, waiting %v", path, d)
				wait = d
				continue
			}
		}
		return nil, apiErr
	}
	return nil, lastErr
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	body, err := c.get(ctx, path, query)
	if err != nil || out == nil || len(body) == 0 {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "client: undecodable response").WithDetail(path)
	}
	return nil
}

//Personal.AI order the ending
