package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/database/redis"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// RateLimiter decides whether key may make one more request.  On error the
// middleware fails open.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, RateLimitInfo, error)
}

// RateLimitInfo is echoed in the X-RateLimit-* headers.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type RateLimitConfig struct {
	// KeyFunc defaults to ClientIPKey.
	KeyFunc   func(r *http.Request) string
	SkipPaths []string
	Logger    logging.Logger
	// OnRejected runs once per 429.
	OnRejected func(key string)
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		KeyFunc:   ClientIPKey,
		SkipPaths: []string{"/healthz", "/readyz", "/metrics"},
	}
}

// ClientIPKey keys by the host part of RemoteAddr, which chimw.RealIP has
// already rewritten from the proxy headers.
func ClientIPKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// WindowCounter is satisfied by *redis.FixedWindowLimiter.
type WindowCounter interface {
	Allow(ctx context.Context, key string) (redis.WindowResult, error)
}

// RedisRateLimiter shares one budget per client across replicas.
type RedisRateLimiter struct {
	counter WindowCounter
}

func NewRedisRateLimiter(counter WindowCounter) *RedisRateLimiter {
	return &RedisRateLimiter{counter: counter}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, RateLimitInfo, error) {
	res, err := l.counter.Allow(ctx, key)
	if err != nil {
		return true, RateLimitInfo{}, err
	}
	return res.Allowed, RateLimitInfo{Limit: res.Limit, Remaining: res.Remaining, ResetAt: res.ResetAt}, nil
}

func setRateHeaders(h http.Header, info RateLimitInfo) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))
}

// RateLimit answers 429 with a Retry-After once a client's budget is spent.
// Static assets and config.SkipPaths are never counted.
func RateLimit(limiter RateLimiter, config RateLimitConfig) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}
	keyOf := config.KeyFunc
	if keyOf == nil {
		keyOf = ClientIPKey
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	exempt := func(path string) bool {
		_, ok := skip[path]
		return ok || strings.HasPrefix(path, "/static/")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			key := keyOf(r)
			ok, info, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logging.WithContext(r.Context(), logger).Warn("rate limiter unavailable, allowing request",
					logging.String("key", key), logging.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			setRateHeaders(w.Header(), info)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			wait := max(1, int(time.Until(info.ResetAt).Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(wait))
			if config.OnRejected != nil {
				config.OnRejected(key)
			}
			writeMiddlewareError(w, errors.New(errors.ErrCodeTooManyRequests, "rate limit exceeded, please retry later"))
		})
	}
}

//Personal.AI order the ending
