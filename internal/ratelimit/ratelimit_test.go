package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, limit int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisLimiter(rdb, limit, window, ""), mr
}

func TestAllow(t *testing.T) {
	l, mr := newLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}
	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, mr.Exists("ratelimit:1.2.3.4"))
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:1.2.3.4"))
}

func TestAllow_WindowDoesNotSlide(t *testing.T) {
	l, mr := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "k")
	assert.True(t, ok)

	mr.FastForward(30 * time.Second)
	ok, _ = l.Allow(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 30*time.Second, mr.TTL("ratelimit:k"), "later attempts keep the first expiry")

	mr.FastForward(31 * time.Second)
	ok, _ = l.Allow(ctx, "k")
	assert.True(t, ok)
}

func TestAllow_RepairsMissingExpiry(t *testing.T) {
	l, mr := newLimiter(t, 5, time.Minute)
	// a counter left behind without a TTL
	require.NoError(t, mr.Set("ratelimit:k", "2"))
	require.Zero(t, mr.TTL("ratelimit:k"))

	ok, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := mr.Get("ratelimit:k")
	require.NoError(t, err)
	assert.Equal(t, "3", got)
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:k"))
}

func TestAllow_RedisDown(t *testing.T) {
	l, mr := newLimiter(t, 1, time.Minute)
	mr.SetError("ERR server unavailable")

	ok, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.True(t, ok)
}
