// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ManuGH/reelscope/internal/credstore"
	xglog "github.com/ManuGH/reelscope/internal/log"
	"github.com/ManuGH/reelscope/internal/moviesapi"
)

// Revalidate checks the current token with GET /auth/me. Success refreshes
// the persisted user; any failure clears the session. Cancellation, or a
// login/logout that lands while the request is in flight, leaves the state
// untouched. It returns the verification error, if any.
func (s *Store) Revalidate(ctx context.Context) error {
	s.mu.Lock()
	if s.verifying {
		s.mu.Unlock()
		return ErrVerificationInFlight
	}
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}
	vctx, cancel := context.WithCancel(ctx)
	s.verifying = true
	s.verifyCancel = cancel
	started := s.epoch
	token := s.current.Token
	s.mu.Unlock()

	user, err := s.api.Me(vctx, token)
	// Only an explicit cancel aborts; a deadline is a verification failure.
	cancelled := errors.Is(vctx.Err(), context.Canceled) || errors.Is(err, moviesapi.ErrCancelled)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifying = false
	s.verifyCancel = nil

	if s.epoch != started {
		s.logger.Debug().
			Str(xglog.FieldEvent, "session.revalidate_superseded").
			Msg("discarding verification result after a newer login or logout")
		return nil
	}
	if cancelled {
		s.logger.Debug().Str(xglog.FieldEvent, "session.revalidate_cancelled").Msg("verification cancelled")
		if err == nil {
			err = context.Canceled
		}
		return err
	}
	s.needsVerify = false
	// The outcome must persist even when ctx has just expired.
	wctx := context.WithoutCancel(ctx)

	if err != nil {
		s.logger.Info().
			Err(err).
			Str(xglog.FieldEvent, "session.revalidate_failed").
			Str(xglog.FieldOldState, Authenticated.String()).
			Str(xglog.FieldNewState, Unauthenticated.String()).
			Msg("stored session rejected, signing out")
		s.current = nil
		s.epoch++
		if delErr := s.kv.Delete(wctx, credstore.KeyToken, credstore.KeyUser); delErr != nil {
			return errors.Join(err, fmt.Errorf("session: clear: %w", delErr))
		}
		return err
	}

	userJSON, mErr := json.Marshal(user)
	if mErr != nil {
		return fmt.Errorf("session: encode user: %w", mErr)
	}
	if pErr := s.kv.Put(wctx, map[string]string{credstore.KeyUser: string(userJSON)}); pErr != nil {
		return fmt.Errorf("session: persist user: %w", pErr)
	}
	s.current = &Session{Token: token, User: *user}
	s.logger.Debug().
		Str(xglog.FieldEvent, "session.revalidated").
		Str(xglog.FieldUsername, user.Username).
		Msg("stored session verified")
	return nil
}

// StartRevalidation runs the once-per-process verification in the
// background if a restored session has not been verified yet. It returns
// ErrVerificationInFlight when one is already running.
func (s *Store) StartRevalidation() error {
	s.mu.Lock()
	if s.verifying {
		s.mu.Unlock()
		return ErrVerificationInFlight
	}
	if !s.needsVerify || s.current == nil {
		s.mu.Unlock()
		return nil
	}
	s.needsVerify = false
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Revalidate(s.bg); err != nil && !errors.Is(err, ErrVerificationInFlight) {
			s.logger.Debug().Err(err).Str(xglog.FieldEvent, "session.revalidate_done").Msg("background verification finished")
		}
	}()
	return nil
}
