// Package queue holds benchmark jobs waiting for a worker.
package queue

import (
	"context"
	"sync"

	"github.com/okian/peerbench/internal/domain/job"
	"github.com/okian/peerbench/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Task is the payload flowing through the queue.
type Task = job.Task

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a task, failing with ErrFull or ErrClosed instead of blocking.
	Enqueue(ctx context.Context, t Task) error

	// Dequeue returns a channel that receives tasks until the queue is closed.
	Dequeue(ctx context.Context) <-chan Task

	Len(ctx context.Context) int

	// Close stops accepting tasks; queued tasks are still delivered.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	tasks    chan Task
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.tasks = make(chan Task, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a task to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueRejected("context_cancelled")
		return err
	}
	select {
	case q.tasks <- t:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.tasks))
		return nil
	default:
		metrics.RecordQueueRejected("full")
		return ErrFull
	}
}

// Dequeue returns a channel that will receive tasks as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Task {
	out := make(chan Task)
	go func() {
		defer close(out)
		for t := range q.tasks {
			select {
			case out <- t:
				metrics.UpdateQueueSize(len(q.tasks))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued tasks.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.tasks)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.tasks)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
