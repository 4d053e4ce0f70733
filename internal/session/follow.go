// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"

	"github.com/ManuGH/reelscope/internal/credstore"
	xglog "github.com/ManuGH/reelscope/internal/log"
)

// Follow keeps the in-memory session in step with changes other processes
// make to the credential backend, e.g. `reelscope logout` in another
// terminal. It returns credstore.ErrWatchUnsupported for backends that
// cannot watch. The watch ends with ctx or Close.
func (s *Store) Follow(ctx context.Context) error {
	w, ok := s.kv.(credstore.Watcher)
	if !ok {
		return credstore.ErrWatchUnsupported
	}
	wctx, cancel := context.WithCancel(ctx)
	changes, err := w.Watch(wctx)
	if err != nil {
		cancel()
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		for {
			select {
			case <-s.bg.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				s.reload(wctx)
			}
		}
	}()
	return nil
}

// reload re-reads the persisted entries after an external change.
func (s *Store) reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.readPersisted(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str(xglog.FieldEvent, "session.reload_failed").Msg("could not re-read persisted session")
		return
	}

	old := s.stateLocked()
	switch {
	case sess == nil && s.current == nil:
		return
	case sess != nil && s.current != nil && sess.Token == s.current.Token:
		s.current.User = sess.User
		return
	}
	s.current = sess
	s.needsVerify = false
	s.bumpLocked()
	s.logTransition("external_change", old, s.stateLocked(), usernameOf(sess))
}

func usernameOf(sess *Session) string {
	if sess == nil {
		return ""
	}
	return sess.User.Username
}
