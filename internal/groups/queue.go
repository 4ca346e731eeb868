package groups

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Queue carries pending group recompute requests to the worker pool.
type Queue interface {
	// Offer never blocks. It returns false when the queue is saturated.
	Offer(ctx context.Context, groupID int64) (bool, error)
	// Take waits up to wait for a request. ok is false on timeout.
	Take(ctx context.Context, wait time.Duration) (groupID int64, ok bool, err error)
	Len(ctx context.Context) (int, error)
}

// ── In-memory queue ─────────────────────────────────────

// MemoryQueue is a bounded channel. A group that is already waiting in the
// queue is not queued twice; once a worker takes it, new offers enqueue again
// so changes made during a rebuild still get their own rebuild.
type MemoryQueue struct {
	ch      chan int64
	mu      sync.Mutex
	pending map[int64]bool
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size < 1 {
		size = 1
	}
	return &MemoryQueue{ch: make(chan int64, size), pending: map[int64]bool{}}
}

func (q *MemoryQueue) Offer(_ context.Context, groupID int64) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending[groupID] {
		return true, nil
	}
	select {
	case q.ch <- groupID:
		q.pending[groupID] = true
		return true, nil
	default:
		return false, nil
	}
}

func (q *MemoryQueue) Take(ctx context.Context, wait time.Duration) (int64, bool, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return 0, false, ctx.Err()
	case <-timer.C:
		return 0, false, nil
	case id := <-q.ch:
		q.mu.Lock()
		delete(q.pending, id)
		q.mu.Unlock()
		return id, true, nil
	}
}

func (q *MemoryQueue) Len(context.Context) (int, error) {
	return len(q.ch), nil
}

// ── Redis queue ─────────────────────────────────────────

// RedisQueue shares recompute requests between instances through a Redis
// list. The size bound is checked with LLEN before LPUSH, so concurrent
// producers can overshoot it slightly.
type RedisQueue struct {
	rdb     *redis.Client
	key     string
	maxSize int
}

func NewRedisQueue(rdb *redis.Client, key string, maxSize int) *RedisQueue {
	if maxSize < 1 {
		maxSize = 1
	}
	return &RedisQueue{rdb: rdb, key: key, maxSize: maxSize}
}

func (q *RedisQueue) Offer(ctx context.Context, groupID int64) (bool, error) {
	n, err := q.rdb.LLen(ctx, q.key).Result()
	if err != nil {
		return false, fmt.Errorf("llen: %w", err)
	}
	if n >= int64(q.maxSize) {
		return false, nil
	}
	if err := q.rdb.LPush(ctx, q.key, groupID).Err(); err != nil {
		return false, fmt.Errorf("lpush: %w", err)
	}
	return true, nil
}

func (q *RedisQueue) Take(ctx context.Context, wait time.Duration) (int64, bool, error) {
	res, err := q.rdb.BRPop(ctx, wait, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("brpop: unexpected reply %v", res)
	}
	id, err := strconv.ParseInt(res[1], 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("brpop: bad group id %q: %w", res[1], err)
	}
	return id, true, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int, error) {
	n, err := q.rdb.LLen(ctx, q.key).Result()
	return int(n), err
}
