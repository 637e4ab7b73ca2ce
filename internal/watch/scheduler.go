package watch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Runner is one reconciliation pass. Implemented by Engine.
type Runner interface {
	Run(ctx context.Context) Stats
}

// Scheduler starts a reconciliation run on a fixed interval, with at
// most one run active at a time. A tick arriving while a run is still
// in progress is dropped, not queued: the next tick re-fetches the full
// hierarchy anyway and everything already stored is deduplicated.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	log      *zap.Logger

	// running is the overlap guard. It is checked-and-set before a run
	// starts and cleared when the run finishes, success or not.
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler that triggers the runner every
// interval.
func NewScheduler(r Runner, interval time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{
		runner:   r,
		interval: interval,
		log:      log,
	}
}

// Run performs one reconciliation immediately, then loops on the ticker
// until ctx is cancelled. Cancellation stops scheduling new runs; an
// in-flight run always completes its walk (each network call carries its
// own timeout), and Run returns once it has.
func (s *Scheduler) Run(ctx context.Context) error {
	// Runs are detached from the scheduling context so a shutdown mid-walk
	// does not abort the hierarchy traversal.
	runCtx := context.WithoutCancel(ctx)

	s.log.Info("scheduler starting", zap.Duration("interval", s.interval))
	s.tick(runCtx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping, waiting for in-flight run")
			s.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			s.tick(runCtx)
		}
	}
}

// tick starts one run unless a previous run is still active. The run
// executes on its own goroutine so the guard stays observable from the
// ticker loop no matter how deep the traversal is.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("previous run still in progress, dropping tick")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		s.runner.Run(ctx)
	}()
}
