package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ms-reservation/internal/logger"
	"ms-reservation/internal/scheduler"
)

func TestTasksRunImmediatelyAndOnTicks(t *testing.T) {
	runner := scheduler.NewRunner(logger.NewLogger())

	var runs int64
	runner.Register(scheduler.Task{
		Name:  "counter",
		Every: 10 * time.Millisecond,
		Run: func(ctx context.Context, now time.Time) error {
			atomic.AddInt64(&runs, 1)
			return nil
		},
	})

	runner.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	runner.Stop()

	// One immediate run plus several ticks.
	assert.GreaterOrEqual(t, atomic.LoadInt64(&runs), int64(3))
}

func TestPanickingTaskDoesNotKillTheSchedule(t *testing.T) {
	runner := scheduler.NewRunner(logger.NewLogger())

	var panics, healthy int64
	runner.Register(scheduler.Task{
		Name:  "panicky",
		Every: 10 * time.Millisecond,
		Run: func(ctx context.Context, now time.Time) error {
			atomic.AddInt64(&panics, 1)
			panic("boom")
		},
	})
	runner.Register(scheduler.Task{
		Name:  "healthy",
		Every: 10 * time.Millisecond,
		Run: func(ctx context.Context, now time.Time) error {
			atomic.AddInt64(&healthy, 1)
			return errors.New("transient")
		},
	})

	runner.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	runner.Stop()

	// The panicking task keeps being rescheduled, and its neighbor is
	// unaffected.
	assert.GreaterOrEqual(t, atomic.LoadInt64(&panics), int64(2))
	assert.GreaterOrEqual(t, atomic.LoadInt64(&healthy), int64(2))
}

func TestStopWaitsForInFlightRuns(t *testing.T) {
	runner := scheduler.NewRunner(logger.NewLogger())

	started := make(chan struct{})
	var finished int64
	runner.Register(scheduler.Task{
		Name:  "slow",
		Every: time.Hour,
		Run: func(ctx context.Context, now time.Time) error {
			close(started)
			time.Sleep(30 * time.Millisecond)
			atomic.AddInt64(&finished, 1)
			return nil
		},
	})

	runner.Start(context.Background())
	<-started
	runner.Stop()

	assert.Equal(t, int64(1), atomic.LoadInt64(&finished))
}

func TestStopCancelsTaskContext(t *testing.T) {
	runner := scheduler.NewRunner(logger.NewLogger())

	cancelled := make(chan struct{})
	runner.Register(scheduler.Task{
		Name:  "watcher",
		Every: time.Hour,
		Run: func(ctx context.Context, now time.Time) error {
			go func() {
				<-ctx.Done()
				close(cancelled)
			}()
			return nil
		},
	})

	runner.Start(context.Background())
	runner.Stop()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("task context was not cancelled on Stop")
	}
}
