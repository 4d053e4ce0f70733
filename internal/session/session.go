// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package session owns the authenticated session: the token and user record,
// their persistence, and the one-shot verification at startup.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/ManuGH/reelscope/internal/credstore"
	xglog "github.com/ManuGH/reelscope/internal/log"
	"github.com/ManuGH/reelscope/internal/moviesapi"
)

// State of the session.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Session is the credential token and the user it belongs to.
type Session struct {
	Token string
	User  moviesapi.User
}

// API is the subset of the catalog client the session needs.
type API interface {
	Login(ctx context.Context, creds moviesapi.Credentials) (*moviesapi.AuthResponse, error)
	Register(ctx context.Context, reg moviesapi.Registration) (*moviesapi.AuthResponse, error)
	Me(ctx context.Context, token string) (*moviesapi.User, error)
}

// Options tunes a Store.
type Options struct {
	Logger *zerolog.Logger
}

// Store is the single writer of the persisted session. All persistence
// happens under mu so a verification result can never overwrite a newer
// login or logout.
type Store struct {
	api API
	kv  credstore.Store

	mu           sync.RWMutex
	current      *Session
	epoch        uint64
	verifying    bool
	verifyCancel context.CancelFunc
	needsVerify  bool

	logger zerolog.Logger
	wg     sync.WaitGroup
	stop   context.CancelFunc
	bg     context.Context
}

// Open restores the persisted session from kv. A partial or undecodable
// persisted state is cleared and the store starts unauthenticated.
func Open(ctx context.Context, api API, kv credstore.Store, opts Options) (*Store, error) {
	logger := xglog.WithComponent("session")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	bg, stop := context.WithCancel(context.Background())
	s := &Store{api: api, kv: kv, logger: logger, bg: bg, stop: stop}

	sess, err := s.readPersisted(ctx)
	if err != nil {
		stop()
		return nil, err
	}
	s.current = sess
	s.needsVerify = sess != nil
	return s, nil
}

// readPersisted loads token+user. Invalid states are cleared here.
func (s *Store) readPersisted(ctx context.Context) (*Session, error) {
	token, hasToken, err := s.kv.Get(ctx, credstore.KeyToken)
	if errors.Is(err, credstore.ErrCorrupt) {
		return nil, s.clearInvalid(ctx, "corrupt credential store")
	}
	if err != nil {
		return nil, fmt.Errorf("session: read token: %w", err)
	}
	rawUser, hasUser, err := s.kv.Get(ctx, credstore.KeyUser)
	if errors.Is(err, credstore.ErrCorrupt) {
		return nil, s.clearInvalid(ctx, "corrupt credential store")
	}
	if err != nil {
		return nil, fmt.Errorf("session: read user: %w", err)
	}

	switch {
	case !hasToken && !hasUser:
		return nil, nil
	case hasToken != hasUser:
		return nil, s.clearInvalid(ctx, "partial persisted session")
	case token == "":
		return nil, s.clearInvalid(ctx, "empty persisted token")
	}

	var user moviesapi.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.Username == "" {
		return nil, s.clearInvalid(ctx, "undecodable persisted user")
	}
	return &Session{Token: token, User: user}, nil
}

func (s *Store) clearInvalid(ctx context.Context, reason string) error {
	s.logger.Info().
		Str(xglog.FieldEvent, "session.persisted_invalid").
		Str("reason", reason).
		Msg("clearing persisted session")
	if err := s.kv.Delete(ctx, credstore.KeyToken, credstore.KeyUser); err != nil {
		return fmt.Errorf("session: clear invalid state: %w", err)
	}
	return nil
}

// Login authenticates and persists both entries in one write.
func (s *Store) Login(ctx context.Context, username, password string) (Session, error) {
	resp, err := s.api.Login(ctx, moviesapi.Credentials{Username: username, Password: password})
	if err != nil {
		return Session{}, classifyAuthError("login", err)
	}
	return s.establish(ctx, resp, "login")
}

// Register creates an account and signs in with it.
func (s *Store) Register(ctx context.Context, username, password, displayName string) (Session, error) {
	resp, err := s.api.Register(ctx, moviesapi.Registration{
		Username:    username,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		return Session{}, classifyAuthError("register", err)
	}
	return s.establish(ctx, resp, "register")
}

func (s *Store) establish(ctx context.Context, resp *moviesapi.AuthResponse, op string) (Session, error) {
	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		return Session{}, fmt.Errorf("session: encode user: %w", err)
	}
	sess := Session{Token: resp.AccessToken, User: resp.User}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Put(ctx, map[string]string{
		credstore.KeyToken: sess.Token,
		credstore.KeyUser:  string(userJSON),
	}); err != nil {
		return Session{}, fmt.Errorf("session: persist: %w", err)
	}
	old := s.stateLocked()
	s.current = &sess
	s.needsVerify = false
	s.bumpLocked()
	s.logTransition(op, old, Authenticated, sess.User.Username)
	return sess, nil
}

// Logout clears the persisted entries. It is idempotent. The in-memory
// session is dropped even when the backend write fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.stateLocked()
	s.current = nil
	s.needsVerify = false
	s.bumpLocked()
	if old == Authenticated {
		s.logTransition("logout", old, Unauthenticated, "")
	}
	if err := s.kv.Delete(ctx, credstore.KeyToken, credstore.KeyUser); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// bumpLocked invalidates any verification in flight.
func (s *Store) bumpLocked() {
	s.epoch++
	if s.verifyCancel != nil {
		s.verifyCancel()
	}
}

// Token returns the current token or "". Callers read it at request time.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Current returns a copy of the session, or nil when signed out.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// State reports whether a session is present.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	if s.current == nil {
		return Unauthenticated
	}
	return Authenticated
}

// Verifying reports whether a verification is in flight.
func (s *Store) Verifying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verifying
}

// ExpiresAt decodes the token's exp claim without verifying the signature.
// It is for display only.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Close stops background work started by StartRevalidation and Follow.
func (s *Store) Close() error {
	s.stop()
	s.mu.Lock()
	if s.verifyCancel != nil {
		s.verifyCancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

func (s *Store) logTransition(op string, from, to State, username string) {
	ev := s.logger.Info().
		Str(xglog.FieldEvent, "session."+op).
		Str(xglog.FieldOldState, from.String()).
		Str(xglog.FieldNewState, to.String())
	if username != "" {
		ev = ev.Str(xglog.FieldUsername, username)
	}
	ev.Msg("session state changed")
}
