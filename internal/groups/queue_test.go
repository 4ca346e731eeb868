package groups

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueueOfferAndTake(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(4)

	for _, id := range []int64{3, 1, 2} {
		ok, err := q.Offer(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
	}
	n, _ := q.Len(ctx)
	assert.Equal(t, 3, n)

	for _, want := range []int64{3, 1, 2} {
		got, ok, err := q.Take(ctx, time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestMemoryQueueCollapsesWaitingDuplicates(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(4)

	for i := 0; i < 3; i++ {
		ok, err := q.Offer(ctx, 7)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	n, _ := q.Len(ctx)
	assert.Equal(t, 1, n)

	id, ok, err := q.Take(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), id)

	// Taken groups can be queued again.
	ok, err = q.Offer(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	n, _ = q.Len(ctx)
	assert.Equal(t, 1, n)
}

func TestMemoryQueueSaturation(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(2)

	ok, _ := q.Offer(ctx, 1)
	assert.True(t, ok)
	ok, _ = q.Offer(ctx, 2)
	assert.True(t, ok)
	ok, err := q.Offer(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryQueueTakeTimeoutAndCancel(t *testing.T) {
	q := NewMemoryQueue(1)

	_, ok, err := q.Take(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err = q.Take(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}

// Runs against a real server when TEST_REDIS_ADDR is set.
func TestRedisQueue(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	key := "studymatch:test:" + uuid.NewString()
	defer rdb.Del(ctx, key)

	q := NewRedisQueue(rdb, key, 2)
	ok, err := q.Offer(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = q.Offer(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = q.Offer(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	id, ok, err := q.Take(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), id)

	id, ok, err = q.Take(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), id)

	_, ok, err = q.Take(ctx, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}
