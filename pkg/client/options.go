package client

import (
	"net/http"
	"time"
)

// Option adjusts a Client built by NewClient.  Zero or out-of-range values
// leave the default in place.
type Option func(*Client)

// WithHTTPClient swaps the transport, e.g. for a custom TLS setup.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each attempt, not the whole retry sequence.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 || c.httpClient == nil {
			return
		}
		c.httpClient.Timeout = d
	}
}

func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetryMax counts retries after the first attempt; 0 disables them.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		if n < 0 {
			return
		}
		c.retryMax = n
	}
}

// WithRetryWait sets the backoff floor and ceiling.  The ceiling is dropped
// when it is below the floor.
func WithRetryWait(floor, ceiling time.Duration) Option {
	return func(c *Client) {
		if floor <= 0 {
			return
		}
		c.retryWaitMin = floor
		if ceiling >= floor {
			c.retryWaitMax = ceiling
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

//Personal.AI order the ending
