// Package worker runs queued benchmark jobs through the engine.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/peerbench/internal/domain/benchmark"
	"github.com/okian/peerbench/internal/domain/job"
	"github.com/okian/peerbench/internal/domain/model"
	"github.com/okian/peerbench/pkg/logger"
	"github.com/okian/peerbench/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Runner produces a report for a request.
type Runner interface {
	Run(req benchmark.Request) (model.Report, error)
}

// Store records job state transitions.
type Store interface {
	Update(ctx context.Context, id string, fn func(*job.Job)) error
}

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan job.Task
}

// Worker processes tasks until its queue closes or it is shut down.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue  Queue
	runner Runner
	store  Store
	name   string
	now    func() time.Time

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, runner Runner, store Store, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		runner:   runner,
		store:    store,
		name:     "worker",
		now:      time.Now,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			if err := w.process(ctx, t); err != nil {
				w.logger.Error(ctx, "job failed", logger.String("job_id", t.JobID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one task and records its outcome. The returned error is the
// benchmarking failure, already stored on the job.
func (w *InMemoryWorker) process(ctx context.Context, t job.Task) error { //nolint:gocritic // hugeParam: Task travels by value through the channel
	start := w.now()
	defer func() { metrics.ObserveWorkerProcessing(time.Since(start)) }()

	if err := w.store.Update(ctx, t.JobID, func(j *job.Job) {
		j.Status = job.StatusRunning
		j.StartedAt = &start
	}); err != nil {
		return fmt.Errorf("mark running: %w", err)
	}
	metrics.RecordJob(string(job.StatusRunning))

	report, runErr := w.runner.Run(t.Request)
	finished := w.now()
	if err := w.store.Update(ctx, t.JobID, func(j *job.Job) {
		j.CompletedAt = &finished
		if runErr != nil {
			j.Status = job.StatusFailed
			j.Error = runErr.Error()
			j.ErrorKind = model.Kind(runErr)
			return
		}
		j.Status = job.StatusCompleted
		j.Report = &report
	}); err != nil {
		return fmt.Errorf("record result: %w", err)
	}

	if runErr != nil {
		metrics.RecordJob(string(job.StatusFailed))
		metrics.RecordError(model.Kind(runErr))
		return runErr
	}
	metrics.RecordJob(string(job.StatusCompleted))
	w.logger.Debug(ctx, "job completed",
		logger.String("job_id", t.JobID),
		logger.Int("peers", report.PeerGroup.OrganizationCount),
		logger.Int("gaps", len(report.Gaps)),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool. A non-positive count uses one worker per CPU.
func NewPool(workerCount int, queue Queue, runner Runner, store Store, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(queue, runner, store, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
