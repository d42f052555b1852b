// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultInterval = time.Minute

// Job is one periodic unit of work. Run returns how many items it
// processed; per-item failures are handled inside the job so one bad
// item never aborts the batch.
type Job interface {
	Name() string
	Run(ctx context.Context) (int, error)
}

// WorkerOptions configures a Worker
type WorkerOptions struct {
	Logger   *logrus.Entry
	Interval time.Duration
}

// WorkerOption configures a Worker
type WorkerOption func(*WorkerOptions)

// WithLogger sets the worker's logger
func WithLogger(logger *logrus.Entry) WorkerOption {
	return func(opts *WorkerOptions) {
		opts.Logger = logger
	}
}

// WithInterval sets the tick interval
func WithInterval(interval time.Duration) WorkerOption {
	return func(opts *WorkerOptions) {
		opts.Interval = interval
	}
}

// Worker drives one Job on a ticker until its context is cancelled.
// An in-flight guard skips a tick while the previous run is still
// going, so a slow sweep never overlaps itself.
type Worker struct {
	job      Job
	logger   *logrus.Entry
	interval time.Duration
	inFlight atomic.Bool
}

// NewWorker creates a worker for a job
func NewWorker(job Job, options ...WorkerOption) *Worker {
	opts := WorkerOptions{Interval: defaultInterval}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.WithField("component", "scheduler")
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}

	return &Worker{
		job:      job,
		logger:   logger.WithField("job", job.Name()),
		interval: opts.Interval,
	}
}

// Run executes the job on every tick until ctx is cancelled. The
// first run happens immediately.
func (w *Worker) Run(ctx context.Context) {
	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	if !w.inFlight.CompareAndSwap(false, true) {
		w.logger.Warn("previous run still in flight, skipping tick")
		return
	}
	defer w.inFlight.Store(false)

	start := time.Now()
	processed, err := w.job.Run(ctx)
	if err != nil {
		w.logger.WithError(err).Warn("job run failed")
		return
	}
	if processed > 0 {
		w.logger.WithFields(logrus.Fields{
			"processed": processed,
			"took":      time.Since(start).String(),
		}).Info("job run completed")
	}
}

// Scheduler runs a set of workers until its context is cancelled
type Scheduler struct {
	workers []*Worker
	logger  *logrus.Entry
}

// New creates an empty scheduler
func New(logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		logger: logger.WithField("component", "scheduler"),
	}
}

// Register adds a worker for the given job and interval
func (s *Scheduler) Register(job Job, interval time.Duration) {
	worker := NewWorker(job,
		WithLogger(s.logger),
		WithInterval(interval),
	)
	s.workers = append(s.workers, worker)
}

// Run starts every worker and blocks until ctx is cancelled and all
// workers have stopped.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.WithField("jobs", len(s.workers)).Info("scheduler starting")

	var wg sync.WaitGroup
	for _, worker := range s.workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.Run(ctx)
		}(worker)
	}
	wg.Wait()

	s.logger.Info("scheduler stopped")
}
