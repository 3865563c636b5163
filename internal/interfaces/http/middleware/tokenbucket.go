package middleware

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	tokens float64
	seen   time.Time
}

// TokenBucketLimiter keeps one bucket per key in process memory.  It serves
// single-replica deployments that run without Redis.
type TokenBucketLimiter struct {
	rate  float64
	burst int
	idle  time.Duration
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	done     chan struct{}
	stopOnce sync.Once
}

// NewTokenBucketLimiter refills rate tokens per second up to burst.  A
// positive idle starts a sweeper that forgets keys unused for that long.
func NewTokenBucketLimiter(rate float64, burst int, idle time.Duration) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		rate:    max(rate, 0),
		burst:   max(burst, 1),
		idle:    idle,
		now:     time.Now,
		buckets: map[string]*bucket{},
		done:    make(chan struct{}),
	}
	if l.rate == 0 {
		l.rate = 1
	}
	if idle > 0 {
		go l.sweep()
	}
	return l
}

func (l *TokenBucketLimiter) Allow(_ context.Context, key string) (bool, RateLimitInfo, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), seen: now}
		l.buckets[key] = b
	}
	b.tokens = min(float64(l.burst), b.tokens+now.Sub(b.seen).Seconds()*l.rate)
	b.seen = now

	info := RateLimitInfo{Limit: l.burst, ResetAt: now.Add(time.Duration(float64(time.Second) / l.rate))}
	if b.tokens < 1 {
		return false, info, nil
	}
	b.tokens--
	info.Remaining = int(b.tokens)
	return true, info, nil
}

func (l *TokenBucketLimiter) sweep() {
	t := time.NewTicker(l.idle)
	defer t.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-t.C:
			l.cleanup()
		}
	}
}

func (l *TokenBucketLimiter) cleanup() {
	cutoff := l.now().Add(-l.idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, b := range l.buckets {
		if b.seen.Before(cutoff) {
			delete(l.buckets, k)
		}
	}
}

// Stop ends the sweeper.  It may be called more than once.
func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// BucketCount is the number of keys currently tracked.
func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

//Personal.AI order the ending
