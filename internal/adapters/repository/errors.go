package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrCorrupt   = errors.New("corrupt collection payload")
	ErrClosed    = errors.New("store closed")
	ErrEmptyPath = errors.New("sqlite path is required")
	ErrEmptyKey  = errors.New("empty key")
)
