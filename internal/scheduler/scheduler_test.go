// internal/scheduler/scheduler_test.go
package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/your-org/storefront-backend/internal/pkg/testutil"
)

type countingJob struct {
	name  string
	runs  atomic.Int32
	delay time.Duration
	block chan struct{}
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) (int, error) {
	j.runs.Add(1)
	if j.block != nil {
		select {
		case <-j.block:
		case <-ctx.Done():
		}
	}
	if j.delay > 0 {
		time.Sleep(j.delay)
	}
	return 0, nil
}

func TestWorkerRunsImmediatelyThenOnInterval(t *testing.T) {
	job := &countingJob{name: "counter"}
	worker := NewWorker(job,
		WithInterval(20*time.Millisecond),
		WithLogger(testutil.NewLogger(t).WithField("test", t.Name())))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return job.runs.Load() >= 3 },
		2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancel")
	}
}

func TestWorkerSkipsTickWhileJobInFlight(t *testing.T) {
	job := &countingJob{name: "slow", block: make(chan struct{})}
	worker := NewWorker(job,
		WithInterval(10*time.Millisecond),
		WithLogger(testutil.NewLogger(t).WithField("test", t.Name())))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	// first run starts immediately and blocks; ticks keep firing but
	// must not start a second run
	assert.Eventually(t, func() bool { return job.runs.Load() == 1 },
		time.Second, time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), job.runs.Load())

	// unblocking lets the next tick run the job again
	close(job.block)
	assert.Eventually(t, func() bool { return job.runs.Load() >= 2 },
		time.Second, time.Millisecond)
}

func TestSchedulerRunsAllWorkersAndStops(t *testing.T) {
	a := &countingJob{name: "a"}
	b := &countingJob{name: "b"}

	s := New(testutil.NewLogger(t))
	s.Register(a, 15*time.Millisecond)
	s.Register(b, 15*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return a.runs.Load() >= 2 && b.runs.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
}
