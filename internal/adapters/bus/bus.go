// Package bus is the in-process change notification bus. Every collection
// write publishes its topic; subscribers are invoked synchronously, in
// subscription order, on the notifying goroutine.
package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/wardwatch/pkg/logger"
	"github.com/okian/wardwatch/pkg/metrics"
)

// Handler reacts to a notification. Topic filtering is the handler's job.
type Handler func(ctx context.Context, topic Topic)

// Notifier publishes topics. Collections depend on this, not on *Bus.
type Notifier interface {
	Notify(ctx context.Context, topic Topic)
}

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a synchronous publish/subscribe hub.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	log    logger.Logger
}

// Option applies a configuration option to the Bus.
type Option func(*Bus)

// WithLogger sets the logger used for handler panics.
func WithLogger(l logger.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.log = l
		}
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{log: logger.Discard()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h and returns a function that removes it. Calling the
// returned function more than once is a no-op.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: h})
	n := len(b.subs)
	b.mu.Unlock()
	metrics.UpdateBusSubscribers(n)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	for i, s := range b.subs {
		if s.id == id {
			// Copy so an in-flight Notify snapshot keeps its view.
			next := make([]subscription, 0, len(b.subs)-1)
			next = append(next, b.subs[:i]...)
			b.subs = append(next, b.subs[i+1:]...)
			break
		}
	}
	n := len(b.subs)
	b.mu.Unlock()
	metrics.UpdateBusSubscribers(n)
}

// Notify invokes every current subscriber with topic. Handlers run in
// subscription order; a panicking handler is logged and does not stop the rest.
func (b *Bus) Notify(ctx context.Context, topic Topic) {
	if topic == "" {
		topic = TopicAll
	}
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	metrics.RecordBusNotification(string(topic))
	for _, s := range subs {
		b.invoke(ctx, s.handler, topic)
	}
}

func (b *Bus) invoke(ctx context.Context, h Handler, topic Topic) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordErrorByComponent("bus", "handler_panic")
			b.log.Error(ctx, "bus handler panicked",
				logger.String("topic", string(topic)),
				logger.String("panic", fmt.Sprint(r)))
		}
	}()
	h(ctx, topic)
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
