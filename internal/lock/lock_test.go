package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_Exclusive(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "checkin:U2", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "checkin:U2", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	_, err = l.Acquire(ctx, "checkin:U3", time.Minute)
	assert.NoError(t, err, "other keys are independent")

	require.NoError(t, release(ctx))
	_, err = l.Acquire(ctx, "checkin:U2", time.Minute)
	assert.NoError(t, err)
}

func TestLocalLocker_Expiry(t *testing.T) {
	l := NewLocalLocker()
	now := time.Date(2025, 5, 17, 9, 0, 0, 0, time.UTC)
	l.clock = func() time.Time { return now }
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err, "expired lock can be taken over")

	require.NoError(t, stale(ctx))
	_, err = l.Acquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, ErrNotAcquired, "stale release must not free the new holder")
}

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLocker(client, "fest:lock:"), mr
}

func TestRedisLocker_Exclusive(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "checkin:U2", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("fest:lock:checkin:U2"))

	_, err = l.Acquire(ctx, "checkin:U2", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("fest:lock:checkin:U2"))

	_, err = l.Acquire(ctx, "checkin:U2", time.Minute)
	assert.NoError(t, err)
}

func TestRedisLocker_ExpiredOwnerCannotRelease(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	_, err = l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	require.NoError(t, stale(ctx))
	assert.True(t, mr.Exists("fest:lock:k"), "new holder keeps the key")
}
