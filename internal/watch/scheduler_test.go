package watch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// blockingRunner signals when a run starts and holds it until released.
type blockingRunner struct {
	runs    atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (r *blockingRunner) Run(context.Context) Stats {
	r.runs.Add(1)
	r.started <- struct{}{}
	<-r.release
	return Stats{}
}

// countingRunner completes instantly.
type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) Run(context.Context) Stats {
	r.runs.Add(1)
	return Stats{}
}

func TestScheduler_DropsTickWhileRunInProgress(t *testing.T) {
	runner := newBlockingRunner()
	s := NewScheduler(runner, time.Hour, zaptest.NewLogger(t))

	ctx := context.Background()

	s.tick(ctx)
	<-runner.started

	// A tick during the in-flight run must not start a second run.
	s.tick(ctx)
	s.tick(ctx)
	assert.Equal(t, int32(1), runner.runs.Load())

	runner.release <- struct{}{}
	s.wg.Wait()

	// Once the run has completed, the next tick starts a fresh one.
	s.tick(ctx)
	<-runner.started
	assert.Equal(t, int32(2), runner.runs.Load())

	runner.release <- struct{}{}
	s.wg.Wait()
}

func TestScheduler_RunsImmediatelyOnStart(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, time.Hour, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return runner.runs.Load() == 1
	}, time.Second, 5*time.Millisecond, "initial run should start before the first tick")

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

func TestScheduler_TicksTriggerRuns(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, 10*time.Millisecond, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return runner.runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

func TestScheduler_WaitsForInFlightRunOnCancel(t *testing.T) {
	runner := newBlockingRunner()
	s := NewScheduler(runner, time.Hour, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	<-runner.started
	cancel()

	// Run must not return while the reconciliation is still walking.
	select {
	case err := <-errCh:
		t.Fatalf("scheduler returned before run completed: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	runner.release <- struct{}{}
	require.ErrorIs(t, <-errCh, context.Canceled)
}
