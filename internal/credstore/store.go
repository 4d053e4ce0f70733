// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package credstore persists the session credential entries. Every backend
// writes a batch of entries atomically so readers never observe a token
// without its user record or the other way round.
package credstore

import (
	"context"
	"errors"
)

// Entry keys of the persisted session.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("credstore: store is closed")
	// ErrCorrupt means the persisted data could not be decoded.
	ErrCorrupt = errors.New("credstore: persisted data is corrupt")
)

// Store is a small string key/value store.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Put writes all entries in one atomic step.
	Put(ctx context.Context, entries map[string]string) error
	// Delete removes the keys in one atomic step. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Watcher is implemented by backends that can report changes made by other
// processes. The channel receives a value after each external change and is
// closed when ctx ends.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}
