package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

func TestNewFixedWindowLimiter_Validation(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := NewFixedWindowLimiter(nil, 1, time.Second, "")
	assert.True(t, errors.IsValidation(err))
	_, err = NewFixedWindowLimiter(client, 0, time.Second, "")
	assert.True(t, errors.IsValidation(err))
	_, err = NewFixedWindowLimiter(client, 1, 0, "")
	assert.True(t, errors.IsValidation(err))
}

func TestFixedWindowLimiter_Allow(t *testing.T) {
	client, mr := newTestClient(t)
	l, err := NewFixedWindowLimiter(client, 3, time.Minute, "test:")
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "hit %d", i+1)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.WithinDuration(t, time.Now().Add(time.Minute), res.ResetAt, 2*time.Second)

	other, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are counted independently")

	assert.True(t, mr.Exists("test:10.0.0.1"))
	assert.Equal(t, time.Minute, mr.TTL("test:10.0.0.1"))
}

func TestFixedWindowLimiter_WindowExpires(t *testing.T) {
	client, mr := newTestClient(t)
	l, err := NewFixedWindowLimiter(client, 1, time.Second, "")
	require.NoError(t, err)
	ctx := context.Background()

	res, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	res, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	mr.FastForward(2 * time.Second)

	res, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestFixedWindowLimiter_RedisDown(t *testing.T) {
	client, mr := newTestClient(t)
	l, err := NewFixedWindowLimiter(client, 1, time.Second, "")
	require.NoError(t, err)

	mr.Close()
	_, err = l.Allow(context.Background(), "k")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))
}

//Personal.AI order the ending
