// Package queue buffers rating submissions between the API and the workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/metrics"
)

const defaultQueueCapacity = 10000

// Event is the payload flowing through the queue.
type Event = model.RatingEvent

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue adds an event. Returns ErrQueueFull or ErrQueueClosed when
	// the event was not accepted.
	Enqueue(ctx context.Context, e Event) error

	// Dequeue returns a channel of events. It is closed after Close once
	// the buffered events are drained.
	Dequeue(ctx context.Context) <-chan Event

	Len(ctx context.Context) int
	Capacity() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Event, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: events are passed by value over the channel
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError("context_cancelled")
		return err
	}

	select {
	case q.events <- e:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.events))
		return nil
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrQueueFull
	}
}

// Dequeue returns the underlying channel wrapped so size metrics follow
// every receive. Each call starts one forwarding goroutine that exits when
// ctx is done or the queue is closed and drained.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for e := range q.events {
			select {
			case out <- e:
				metrics.UpdateQueueSize(len(q.events))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (q *InMemoryQueue) Len(_ context.Context) int {
	n := len(q.events)
	metrics.UpdateQueueSize(n)
	return n
}

func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close stops accepting events. Buffered events are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
