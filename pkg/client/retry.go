package client

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// calculateBackoff doubles retryWaitMin per attempt, caps it at
// retryWaitMax and adds up to a quarter of jitter.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	d := c.retryWaitMax
	if shift := attempt - 1; shift < 32 {
		d = min(c.retryWaitMin<<uint(shift), c.retryWaitMax)
	}
	if q := int64(d / 4); q > 0 {
		d += time.Duration(rand.Int63n(q))
	}
	return d
}

// retryAfter reads a delay-seconds Retry-After header.  HTTP-date values
// are not honoured.
func retryAfter(h http.Header) (time.Duration, bool) {
	n, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || n < 0 {
		return 0, false
	}
	return time.Duration(n) * time.Second, true
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

//Personal.AI order the ending
