package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/database/redis"
	"github.com/turtacn/Trilemma-Dashboard/internal/testutil"
)

func request(remote string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/view?state=SP&year=2019", nil)
	r.RemoteAddr = remote
	return r
}

func TestTokenBucketLimiter_Burst(t *testing.T) {
	l := NewTokenBucketLimiter(1, 2, 0)
	ctx := context.Background()

	ok, info, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, info.Limit)
	assert.Equal(t, 1, info.Remaining)

	ok, _, _ = l.Allow(ctx, "a")
	assert.True(t, ok)
	ok, info, _ = l.Allow(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 0, info.Remaining)

	ok, _, _ = l.Allow(ctx, "b")
	assert.True(t, ok)
	assert.Equal(t, 2, l.BucketCount())
}

func TestTokenBucketLimiter_Refill(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewTokenBucketLimiter(2, 1, 0)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _, _ := l.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _, _ = l.Allow(ctx, "a")
	assert.False(t, ok)

	now = now.Add(500 * time.Millisecond)
	ok, _, _ = l.Allow(ctx, "a")
	assert.True(t, ok)
}

func TestTokenBucketLimiter_Cleanup(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewTokenBucketLimiter(1, 1, time.Minute)
	defer l.Stop()
	l.now = func() time.Time { return now }

	_, _, _ = l.Allow(context.Background(), "a")
	now = now.Add(2 * time.Minute)
	l.cleanup()
	assert.Equal(t, 0, l.BucketCount())
	l.Stop()
}

func TestRateLimit_RejectsOverBudget(t *testing.T) {
	rejected := 0
	cfg := DefaultRateLimitConfig()
	cfg.OnRejected = func(string) { rejected++ }
	h := RateLimit(NewTokenBucketLimiter(0.001, 1, 0), cfg)(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, request("10.0.0.1:5555"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, request("10.0.0.1:6666"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":{"code":"COMMON_007","message":"rate limit exceeded, please retry later"}}`, w.Body.String())
	assert.Equal(t, 1, rejected)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, request("10.0.0.2:5555"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_SkipPaths(t *testing.T) {
	h := RateLimit(NewTokenBucketLimiter(0.001, 1, 0), DefaultRateLimitConfig())(okHandler())
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, RateLimitInfo, error) {
	return false, RateLimitInfo{}, fmt.Errorf("connection refused")
}

func TestRateLimit_FailOpen(t *testing.T) {
	logger := testutil.NewMockLogger()
	cfg := DefaultRateLimitConfig()
	cfg.Logger = logger
	h := RateLimit(failingLimiter{}, cfg)(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, request("10.0.0.1:1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, logger.HasMessage("warn", "rate limiter unavailable, allowing request"))
}

type stubCounter struct {
	res redis.WindowResult
	err error
}

func (s stubCounter) Allow(context.Context, string) (redis.WindowResult, error) { return s.res, s.err }

func TestRedisRateLimiter(t *testing.T) {
	reset := time.Now().Add(time.Minute)
	l := NewRedisRateLimiter(stubCounter{res: redis.WindowResult{Allowed: false, Limit: 5, Remaining: 0, ResetAt: reset}})
	ok, info, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, RateLimitInfo{Limit: 5, Remaining: 0, ResetAt: reset}, info)

	l = NewRedisRateLimiter(stubCounter{err: fmt.Errorf("down")})
	ok, _, err = l.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.True(t, ok)
}

func TestClientIPKey(t *testing.T) {
	assert.Equal(t, "10.1.2.3", ClientIPKey(request("10.1.2.3:443")))
	assert.Equal(t, "10.1.2.3", ClientIPKey(request("10.1.2.3")))
}

//Personal.AI order the ending
