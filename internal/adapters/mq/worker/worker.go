// Package worker runs the background gauge refresher: it drains change
// topics from the queue and asks a Refresher to recompute the gauges for
// each one.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/wardwatch/internal/adapters/bus"
	"github.com/okian/wardwatch/pkg/logger"
	"github.com/okian/wardwatch/pkg/metrics"
)

const defaultRefreshTimeout = 10 * time.Second

// Refresher recomputes derived gauges for a topic.
type Refresher interface {
	Refresh(ctx context.Context, topic bus.Topic) error
}

// Queue defines how workers receive topics.
type Queue interface {
	Dequeue(ctx context.Context) <-chan bus.Topic
}

// Worker processes topics until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the current refresh.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker over a Queue.
type InMemoryWorker struct {
	queue     Queue
	refresher Refresher
	name      string

	refreshTimeout time.Duration

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, refresher Refresher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:          queue,
		refresher:      refresher,
		name:           "refresher",
		refreshTimeout: defaultRefreshTimeout,
		shutdown:       make(chan struct{}),
		done:           make(chan struct{}),
		logger:         logger.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	topics := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case topic, ok := <-topics:
			if !ok {
				return
			}
			if err := w.process(ctx, topic); err != nil {
				w.logger.Error(ctx, "refresh failed", logger.String("worker", w.name), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, topic bus.Topic) error {
	start := time.Now()
	defer func() {
		metrics.RecordRefreshLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	ctx, cancel := context.WithTimeout(ctx, w.refreshTimeout)
	defer cancel()

	if err := w.refresher.Refresh(ctx, topic); err != nil {
		metrics.RecordRefreshError()
		metrics.RecordErrorByComponent("worker", "refresh_error")
		return fmt.Errorf("refresh %s: %w", topic, err)
	}
	w.logger.Debug(ctx, "gauges refreshed", logger.String("topic", string(topic)))
	return nil
}
