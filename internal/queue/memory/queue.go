// Package memory provides the bounded in-memory work queue shared by the
// crawler and downloader roles.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ligain/ycrawler/internal/archive"
)

// Queue is a bounded FIFO of work items with context-aware operations. Its
// fixed capacity is the pipeline's backpressure mechanism: a full queue
// suspends the crawler until the downloader catches up.
type Queue struct {
	ch      chan archive.WorkItem
	closeMu sync.Mutex
	closed  bool
}

// NewQueue constructs a queue with the provided capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{
		ch: make(chan archive.WorkItem, capacity),
	}
}

// Enqueue pushes an item, blocking while the queue is full, or returns if
// the context ends.
func (q *Queue) Enqueue(ctx context.Context, item archive.WorkItem) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	case q.ch <- item:
		return nil
	}
}

// Dequeue pops the next item, blocking while the queue is empty, respecting
// context cancellation.
func (q *Queue) Dequeue(ctx context.Context) (archive.WorkItem, error) {
	select {
	case <-ctx.Done():
		return archive.WorkItem{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
	case item, ok := <-q.ch:
		if !ok {
			return archive.WorkItem{}, errors.New("queue closed")
		}
		return item, nil
	}
}

// TryDequeue pops the next item without blocking. The downloader uses it to
// poll and sleep instead of parking on an empty queue.
func (q *Queue) TryDequeue() (archive.WorkItem, bool) {
	select {
	case item, ok := <-q.ch:
		if !ok {
			return archive.WorkItem{}, false
		}
		return item, true
	default:
		return archive.WorkItem{}, false
	}
}

// Len reports the number of buffered items.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Close closes the underlying channel for shutdown.
func (q *Queue) Close() {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return
	}
	close(q.ch)
	q.closed = true
}
