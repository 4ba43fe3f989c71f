package lock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func TestRedisLocker_ExcludesSecondHolder(t *testing.T) {
	ctx := context.Background()
	locker := NewRedisLocker(setupTestRedis(t))

	lease, err := locker.Acquire(ctx, "bulk:1:2025-03", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "bulk:1:2025-03", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, lease.Release(ctx))

	again, err := locker.Acquire(ctx, "bulk:1:2025-03", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestRedisLocker_StaleLeaseDoesNotReleaseNewHolder(t *testing.T) {
	ctx := context.Background()
	client := setupTestRedis(t)
	locker := NewRedisLocker(client)

	stale, err := locker.Acquire(ctx, "bulk:x", 50*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	current, err := locker.Acquire(ctx, "bulk:x", time.Minute)
	require.NoError(t, err)

	require.NoError(t, stale.Release(ctx))
	exists, err := client.Exists(ctx, keyPrefix+"bulk:x").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	require.NoError(t, current.Release(ctx))
}

func TestNoopLocker(t *testing.T) {
	ctx := context.Background()
	var locker Locker = NoopLocker{}

	a, err := locker.Acquire(ctx, "same", time.Minute)
	require.NoError(t, err)
	b, err := locker.Acquire(ctx, "same", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, a.Release(ctx))
	assert.NoError(t, b.Release(ctx))
}
