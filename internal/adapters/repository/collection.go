package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/okian/wardwatch/internal/adapters/bus"
	"github.com/okian/wardwatch/pkg/logger"
	"github.com/okian/wardwatch/pkg/metrics"
)

// CollectionOption configures a Collection.
type CollectionOption func(*collectionConfig)

type collectionConfig struct {
	notifier bus.Notifier
	log      logger.Logger
}

// WithNotifier publishes the collection topic after every successful write.
func WithNotifier(n bus.Notifier) CollectionOption {
	return func(c *collectionConfig) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger sets the logger used for corrupt payload warnings.
func WithLogger(l logger.Logger) CollectionOption {
	return func(c *collectionConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// Collection is a typed JSON array stored under one key.
type Collection[T any] struct {
	kv    KV
	key   string
	topic bus.Topic
	cfg   collectionConfig
	mu    sync.Mutex
}

// NewCollection binds a collection to key, publishing topic on writes.
func NewCollection[T any](kv KV, key string, topic bus.Topic, opts ...CollectionOption) *Collection[T] {
	cfg := collectionConfig{log: logger.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Collection[T]{kv: kv, key: key, topic: topic, cfg: cfg}
}

// Key returns the storage key.
func (c *Collection[T]) Key() string { return c.key }

// Topic returns the bus topic published on writes.
func (c *Collection[T]) Topic() bus.Topic { return c.topic }

// Load is the strict read: a missing key is an empty collection, an
// unparsable payload is ErrCorrupt.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	raw, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}
	metrics.RecordStoreRead(c.key)
	if !ok || strings.TrimSpace(raw) == "" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Read never fails. A corrupt payload is backed up under <key>.corrupt,
// logged and counted; any failure yields an empty collection.
func (c *Collection[T]) Read(ctx context.Context) []T {
	items, err := c.Load(ctx)
	if err == nil {
		return items
	}
	c.handleReadError(ctx, err)
	return []T{}
}

func (c *Collection[T]) handleReadError(ctx context.Context, err error) {
	if !errors.Is(err, ErrCorrupt) {
		metrics.RecordErrorByComponent("repository", "read")
		c.cfg.log.Error(ctx, "collection read failed", logger.String("collection", c.key), logger.Error(err))
		return
	}
	metrics.RecordStoreCorrupt(c.key)
	backup := c.key + CorruptSuffix
	raw, _, gerr := c.kv.Get(ctx, c.key)
	if gerr == nil {
		gerr = c.kv.Set(ctx, backup, raw)
	}
	fields := []logger.Field{logger.String("collection", c.key), logger.String("backup", backup), logger.Error(err)}
	if gerr != nil {
		fields = append(fields, logger.String("backup_error", gerr.Error()))
	}
	c.cfg.log.Warn(ctx, "corrupt collection treated as empty", fields...)
}

// Write replaces the collection and then publishes its topic.
func (c *Collection[T]) Write(ctx context.Context, items []T) error {
	c.mu.Lock()
	err := c.store(ctx, items)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notify(ctx)
	return nil
}

// Update runs a read-modify-write under the collection lock. fn receives the
// current items; returning an error aborts without writing. A corrupt payload
// is backed up and fn starts from empty; any other read error aborts the
// update. Subscribers are notified after the lock is released.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	next, err := c.current(ctx)
	if err == nil {
		next, err = fn(next)
	}
	if err == nil {
		err = c.store(ctx, next)
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notify(ctx)
	return nil
}

func (c *Collection[T]) current(ctx context.Context) ([]T, error) {
	items, err := c.Load(ctx)
	if err == nil {
		return items, nil
	}
	c.handleReadError(ctx, err)
	if errors.Is(err, ErrCorrupt) {
		return []T{}, nil
	}
	return nil, err
}

func (c *Collection[T]) store(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.kv.Set(ctx, c.key, string(data)); err != nil {
		metrics.RecordErrorByComponent("repository", "write")
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	metrics.RecordStoreWrite(c.key)
	return nil
}

func (c *Collection[T]) notify(ctx context.Context) {
	if c.cfg.notifier != nil {
		c.cfg.notifier.Notify(ctx, c.topic)
	}
}
