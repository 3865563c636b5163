package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// fixedWindowScript increments the window counter and arms its expiry on the
// first hit.  It returns {count, pttl}.
var fixedWindowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// WindowResult is the outcome of one FixedWindowLimiter.Allow call.
type WindowResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// FixedWindowLimiter counts requests per key in fixed windows shared by every
// replica connected to the same Redis.
type FixedWindowLimiter struct {
	client *Client
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewFixedWindowLimiter allows limit requests per key in each window.
func NewFixedWindowLimiter(client *Client, limit int, window time.Duration, prefix string) (*FixedWindowLimiter, error) {
	if client == nil {
		return nil, errors.New(errors.ErrCodeValidation, "redis client is required")
	}
	if limit <= 0 || window <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "rate limit and window must be positive").
			WithDetail(fmt.Sprintf("limit=%d window=%s", limit, window))
	}
	if prefix == "" {
		prefix = "trilemma:ratelimit:"
	}
	return &FixedWindowLimiter{client: client, limit: limit, window: window, prefix: prefix, now: time.Now}, nil
}

// Allow records one hit for key.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (WindowResult, error) {
	res, err := l.client.RunScript(ctx, fixedWindowScript, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return WindowResult{}, errors.Wrap(err, errors.ErrCodeCacheError, "rate limit script failed")
	}
	if len(res) != 2 {
		return WindowResult{}, errors.Newf(errors.ErrCodeCacheError, "rate limit script returned %d values", len(res))
	}

	count, ttl := res[0], res[1]
	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return WindowResult{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   l.now().Add(time.Duration(ttl) * time.Millisecond),
	}, nil
}

//Personal.AI order the ending
