// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package credstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrWatchUnsupported is returned by Watch on backends that cannot observe
// external changes.
var ErrWatchUnsupported = errors.New("credstore: backend does not support watching")

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendFile, BackendSQLite, BackendBadger, BackendRedis, BackendMemory}

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Path is the file (file, sqlite) or directory (badger) to use.
	Path  string
	Redis RedisConfig
}

// Open creates a Store based on the backend configuration. The result is
// instrumented; type-assert to Watcher to follow external changes.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	backend := cfg.Backend
	switch backend {
	case "", BackendFile:
		backend = BackendFile
		s, err = OpenFileStore(cfg.Path)
	case BackendMemory:
		s = NewMemoryStore()
	case BackendSQLite:
		s, err = OpenSQLiteStore(cfg.Path)
	case BackendBadger:
		s, err = OpenBadgerStore(cfg.Path)
	case BackendRedis:
		s, err = OpenRedisStore(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("credstore: unknown backend: %s", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return NewInstrumentedStore(s, backend), nil
}
