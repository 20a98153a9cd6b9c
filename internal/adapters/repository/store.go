// Package repository persists collections as JSON arrays in a string
// key-value store.
package repository

import (
	"context"
	"strings"
)

// KeyPrefix namespaces every collection key.
const KeyPrefix = "wardwatch"

// CorruptSuffix is appended to a key to hold an unreadable payload.
const CorruptSuffix = ".corrupt"

// KV is a string key-value store.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Keys lists keys starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Close releases the store.
	Close() error
}

// Key builds a collection key: wardwatch.<module>.<collection>.
func Key(module, collection string) string {
	return strings.Join([]string{KeyPrefix, module, collection}, ".")
}
