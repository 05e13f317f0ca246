package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ms-reservation/internal/logger"
)

// Task is a periodic reconciliation job. Run receives the tick time so
// jobs stay deterministic under test.
type Task struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context, now time.Time) error
}

// Runner drives each task on its own ticker. A panicking or failing
// run is logged and the schedule keeps going.
type Runner struct {
	Logger *logger.Logger

	mu    sync.Mutex
	tasks []Task
	stop  context.CancelFunc
	wg    sync.WaitGroup
}

func NewRunner(log *logger.Logger) *Runner {
	return &Runner{Logger: log}
}

func (r *Runner) Register(task Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
}

// Start launches one goroutine per task. Each task also runs once
// immediately so a restart never waits a full interval to reconcile.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, r.stop = context.WithCancel(ctx)
	for _, task := range r.tasks {
		r.wg.Add(1)
		go r.loop(ctx, task)
	}
	r.Logger.Info("SCHEDULER", fmt.Sprintf("Started %d scheduled tasks", len(r.tasks)))
}

func (r *Runner) loop(ctx context.Context, task Task) {
	defer r.wg.Done()

	ticker := time.NewTicker(task.Every)
	defer ticker.Stop()

	r.runOnce(ctx, task, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.runOnce(ctx, task, now)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, task Task, now time.Time) {
	defer func() {
		if rec := recover(); rec != nil {
			r.Logger.Error("SCHEDULER", fmt.Sprintf("Task %s panicked: %v", task.Name, rec))
		}
	}()

	if err := task.Run(ctx, now); err != nil {
		r.Logger.Error("SCHEDULER", fmt.Sprintf("Task %s failed: %v", task.Name, err))
	}
}

// Stop cancels all task loops and waits for in-flight runs.
func (r *Runner) Stop() {
	r.mu.Lock()
	stop := r.stop
	r.mu.Unlock()

	if stop != nil {
		stop()
	}
	r.wg.Wait()
	r.Logger.Info("SCHEDULER", "All scheduled tasks stopped")
}
