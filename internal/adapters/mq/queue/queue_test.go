package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func task(id string) Task {
	return Task{JobID: id}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if err := q.Enqueue(ctx, task("job-1")); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.JobID != "job-1" {
		t.Errorf("expected job-1, got %v", got.JobID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for _, id := range []string{"job-1", "job-2"} {
		if err := q.Enqueue(ctx, task(id)); err != nil {
			t.Fatalf("expected enqueue to succeed, got %v", err)
		}
	}
	if err := q.Enqueue(ctx, task("job-3")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, task("job-1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(50))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const producers = 5
	const perProducer = 100

	var consumed sync.Map
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tk := range q.Dequeue(ctx) {
				consumed.Store(tk.JobID, true)
			}
		}()
	}

	var pw sync.WaitGroup
	for i := 0; i < producers; i++ {
		pw.Add(1)
		go func(id int) {
			defer pw.Done()
			for j := 0; j < perProducer; j++ {
				for q.Enqueue(ctx, task(fmt.Sprintf("job-%d-%d", id, j))) != nil {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}
	pw.Wait()
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	wg.Wait()

	n := 0
	consumed.Range(func(_, _ any) bool { n++; return true })
	if n != producers*perProducer {
		t.Errorf("expected %d consumed tasks, got %d", producers*perProducer, n)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	_ = q.Enqueue(ctx, task("job-1"))
	_ = q.Enqueue(ctx, task("job-2"))

	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if err := q.Enqueue(ctx, task("job-3")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Tasks queued before Close are still delivered, then the channel closes.
	var drained []string
	timeout := time.After(time.Second)
	ch := q.Dequeue(ctx)
	for done := false; !done; {
		select {
		case tk, ok := <-ch:
			if !ok {
				done = true
				break
			}
			drained = append(drained, tk.JobID)
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
	if len(drained) != 2 {
		t.Errorf("expected 2 drained tasks, got %d", len(drained))
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
