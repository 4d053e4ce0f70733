// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/reelscope/internal/log"
)

const filePerm = 0o600

// FileStore keeps all entries in one JSON document that is replaced
// atomically on every write.
type FileStore struct {
	path   string
	mu     sync.Mutex
	closed bool
	logger zerolog.Logger
}

// OpenFileStore uses path as the backing file. The parent directory is
// created if needed; the file itself is created on the first write.
func OpenFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("credstore: file backend requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("credstore: create directory: %w", err)
	}
	s := &FileStore{path: path, logger: xglog.WithComponent("credstore")}
	if _, err := s.load(); err != nil && !errors.Is(err, ErrCorrupt) {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrClosed
	}
	entries, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := entries[key]
	return v, ok, nil
}

func (s *FileStore) Put(_ context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	current, err := s.load()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	for k, v := range entries {
		current[k] = v
	}
	return s.write(current)
}

func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	current, err := s.load()
	corrupt := errors.Is(err, ErrCorrupt)
	if err != nil && !corrupt {
		return err
	}
	changed := corrupt
	for _, k := range keys {
		if _, ok := current[k]; ok {
			delete(current, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if len(current) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("credstore: remove %s: %w", s.path, err)
		}
		return nil
	}
	return s.write(current)
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// load reads the document. A missing file is an empty store. A document that
// is not a JSON object yields an empty map and ErrCorrupt; the next Put
// overwrites it and Delete removes it.
func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credstore: read %s: %w", s.path, err)
	}
	entries := map[string]string{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("credential file is not valid JSON")
		return map[string]string{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return entries, nil
}

// write replaces the file atomically: temp file, fsync, rename.
func (s *FileStore) write(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("credstore: encode: %w", err)
	}

	pendingFile, err := renameio.NewPendingFile(s.path, renameio.WithPermissions(filePerm))
	if err != nil {
		return fmt.Errorf("credstore: create temp file: %w", err)
	}
	defer func() { _ = pendingFile.Cleanup() }()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("credstore: write temp file: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("credstore: replace %s: %w", s.path, err)
	}
	return nil
}

// Watch reports changes to the backing file, including writes by other
// processes. Events are debounced.
func (s *FileStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("credstore: create watcher: %w", err)
	}
	// Watch the directory: atomic replacement swaps the inode, which would
	// silently end a watch on the file itself.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("credstore: watch %s: %w", dir, err)
	}

	out := make(chan struct{}, 1)
	go s.watchLoop(ctx, watcher, out)
	return out, nil
}

func (s *FileStore) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- struct{}) {
	defer close(out)
	defer func() { _ = watcher.Close() }()

	const debounce = 100 * time.Millisecond
	var timer *time.Timer
	var fire <-chan time.Time
	base := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.logger.Debug().
				Str(xglog.FieldEvent, "credstore.file_changed").
				Str("op", event.Op.String()).
				Msg("credential file changed")
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case out <- struct{}{}:
			default:
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn().Err(err).Str(xglog.FieldEvent, "credstore.watch_error").Msg("credential watcher error")
		}
	}
}
