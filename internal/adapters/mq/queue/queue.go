// Package queue buffers change topics between the notification bus and the
// gauge refresher.
//
// The queue coalesces: a topic that is already pending is not queued twice,
// since one refresh covers every write that happened before it runs.
package queue

import (
	"context"
	"sync"

	"github.com/okian/wardwatch/internal/adapters/bus"
	"github.com/okian/wardwatch/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 64
)

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a topic. Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, t bus.Topic) bool

	// Dequeue returns a channel delivering topics until the queue is closed.
	Dequeue(ctx context.Context) <-chan bus.Topic

	// Len returns the current number of queued topics.
	Len(ctx context.Context) int

	// Close stops accepting topics and closes the dequeue channel.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	topics   chan bus.Topic
	capacity int

	mu      sync.Mutex
	pending map[bus.Topic]struct{}
	closed  bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		pending:  make(map[bus.Topic]struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.topics = make(chan bus.Topic, q.capacity)
	metrics.UpdateRefreshQueueSize(0)
	return q
}

// Enqueue adds a topic unless it is already pending.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t bus.Topic) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if _, ok := q.pending[t]; ok {
		return true
	}

	select {
	case q.topics <- t:
		q.pending[t] = struct{}{}
		metrics.UpdateRefreshQueueSize(len(q.topics))
		return true
	case <-ctx.Done():
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordRefreshDropped()
		return false
	}
}

// Dequeue returns a channel delivering queued topics. A delivered topic is
// no longer pending, so a write during its refresh queues it again.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan bus.Topic {
	out := make(chan bus.Topic)
	go func() {
		defer close(out)
		for t := range q.topics {
			q.mu.Lock()
			delete(q.pending, t)
			q.mu.Unlock()
			metrics.UpdateRefreshQueueSize(len(q.topics))
			select {
			case out <- t:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued topics.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.topics)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.topics)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
