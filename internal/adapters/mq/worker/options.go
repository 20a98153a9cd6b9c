package worker

import (
	"time"

	"github.com/okian/wardwatch/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName tags log lines of this refresher.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets the logger for failed refreshes.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithRefreshTimeout bounds a single topic refresh. A refresh that runs out
// of time is counted as failed and the worker moves on to the next topic.
func WithRefreshTimeout(d time.Duration) Option {
	return func(w *InMemoryWorker) {
		if d > 0 {
			w.refreshTimeout = d
		}
	}
}
