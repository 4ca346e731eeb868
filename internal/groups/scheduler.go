package groups

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/studymatch/backend/internal/logger"
)

// Recomputer rebuilds one group's aggregate. *Maintainer satisfies it.
type Recomputer interface {
	Recompute(groupID int64) error
}

type SchedulerOptions struct {
	MinWorkers  int
	MaxWorkers  int
	IdleTimeout time.Duration
	// PollInterval bounds how long a resident worker blocks on an empty queue
	// before re-checking for shutdown.
	PollInterval time.Duration
}

type SchedulerStats struct {
	Scheduled int64
	Dropped   int64
	Completed int64
	Failed    int64
	Bursts    int64
}

// Scheduler runs group recomputes on a bounded worker pool. MinWorkers stay
// resident; while work is queued, extra workers start up to MaxWorkers and
// exit again after IdleTimeout without work. Schedule never blocks and never
// reports failure to its caller.
type Scheduler struct {
	queue      Queue
	recomputer Recomputer
	log        *logger.Logger
	opts       SchedulerOptions

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	eg      *errgroup.Group
	stopped bool

	active    atomic.Int32
	idle      atomic.Int32 // workers blocked in Take
	running   atomic.Int32 // recomputes in flight
	scheduled atomic.Int64
	dropped   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	bursts    atomic.Int64
}

func NewScheduler(queue Queue, recomputer Recomputer, log *logger.Logger, opts SchedulerOptions) *Scheduler {
	if opts.MinWorkers < 1 {
		opts.MinWorkers = 1
	}
	if opts.MaxWorkers < opts.MinWorkers {
		opts.MaxWorkers = opts.MinWorkers
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return &Scheduler{
		queue:      queue,
		recomputer: recomputer,
		log:        log.With("component", "GroupScheduler"),
		opts:       opts,
	}
}

// Start launches the resident workers. Calling it twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eg != nil || s.stopped {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.eg, s.ctx = errgroup.WithContext(ctx)

	s.log.Info("Starting group recompute pool",
		"min_workers", s.opts.MinWorkers,
		"max_workers", s.opts.MaxWorkers,
	)
	for i := 0; i < s.opts.MinWorkers; i++ {
		s.active.Add(1)
		s.goLocked(false)
	}
}

// Drain waits until the queue is empty and no recompute is running, or until
// ctx is done. Requests scheduled while draining are waited for too. The pool
// must be quiet on two consecutive polls, which covers a request caught
// between leaving the queue and being counted as running.
func (s *Scheduler) Drain(ctx context.Context) error {
	ticker := time.NewTicker(max(s.opts.PollInterval/2, time.Millisecond))
	defer ticker.Stop()
	quiet := 0
	for {
		n, err := s.queue.Len(ctx)
		if err == nil && n == 0 && s.running.Load() == 0 {
			quiet++
		} else {
			quiet = 0
		}
		if quiet >= 2 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stop cancels the workers and waits for in-flight recomputes to finish.
// Queued requests that were not started are abandoned; call Drain first to
// finish them.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	eg, cancel := s.eg, s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if eg != nil {
		_ = eg.Wait()
	}
	s.log.Info("Group recompute pool stopped")
}

// Schedule queues a recompute of groupID and returns immediately. A saturated
// queue drops the request; the next change to the group triggers it again.
func (s *Scheduler) Schedule(groupID int64) {
	ctx := s.baseContext()
	ok, err := s.queue.Offer(ctx, groupID)
	if err != nil {
		s.dropped.Add(1)
		s.log.Warn("Recompute enqueue failed", "group_id", groupID, "error", err)
		return
	}
	if !ok {
		s.dropped.Add(1)
		s.log.Warn("Recompute queue saturated, dropping request", "group_id", groupID)
		return
	}
	s.scheduled.Add(1)
	s.maybeBurst(ctx)
}

func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		Scheduled: s.scheduled.Load(),
		Dropped:   s.dropped.Load(),
		Completed: s.completed.Load(),
		Failed:    s.failed.Load(),
		Bursts:    s.bursts.Load(),
	}
}

func (s *Scheduler) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}

// maybeBurst adds a temporary worker when more work is waiting than there
// are idle workers to take it and the pool is below MaxWorkers.
func (s *Scheduler) maybeBurst(ctx context.Context) {
	n, err := s.queue.Len(ctx)
	if err != nil || n <= int(s.idle.Load()) {
		return
	}
	for {
		cur := s.active.Load()
		if cur >= int32(s.opts.MaxWorkers) {
			return
		}
		if s.active.CompareAndSwap(cur, cur+1) {
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eg == nil || s.stopped {
		s.active.Add(-1)
		return
	}
	s.bursts.Add(1)
	s.goLocked(true)
}

// goLocked starts a worker; the caller holds mu and has already counted it in
// active.
func (s *Scheduler) goLocked(burst bool) {
	ctx := s.ctx
	s.eg.Go(func() error {
		defer s.active.Add(-1)
		s.runLoop(ctx, burst)
		return nil
	})
}

func (s *Scheduler) runLoop(ctx context.Context, burst bool) {
	wait := s.opts.PollInterval
	if burst {
		wait = s.opts.IdleTimeout
	}
	for {
		if ctx.Err() != nil {
			return
		}
		s.idle.Add(1)
		groupID, ok, err := s.queue.Take(ctx, wait)
		s.idle.Add(-1)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("Recompute dequeue failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}
		if !ok {
			if burst {
				return
			}
			continue
		}
		s.running.Add(1)
		// The idle count can lag a Take that just returned, so the
		// Schedule call for a later request may have skipped its burst.
		s.maybeBurst(ctx)
		s.run(groupID)
		s.running.Add(-1)
	}
}

// run executes one recompute. Errors and panics are logged and swallowed;
// the previous aggregate stays in place until the next successful run.
func (s *Scheduler) run(groupID int64) {
	jobID := uuid.NewString()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.failed.Add(1)
			s.log.Error("Group recompute panic", "group_id", groupID, "job_id", jobID, "panic", r)
		}
	}()

	if err := s.recomputer.Recompute(groupID); err != nil {
		s.failed.Add(1)
		s.log.Warn("Group recompute failed", "group_id", groupID, "job_id", jobID, "error", err)
		return
	}
	s.completed.Add(1)
	s.log.Debug("Group recompute done",
		"group_id", groupID,
		"job_id", jobID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
