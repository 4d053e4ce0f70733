// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package mockapi

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ManuGH/reelscope/internal/moviesapi"
)

var errUsernameTaken = errors.New("username already taken")

type account struct {
	user moviesapi.User
	hash []byte
}

type userStore struct {
	mu       sync.RWMutex
	byName   map[string]*account
	byUserID map[int]*account
	nextID   int
	cost     int
	now      func() time.Time
}

func newUserStore(cost int, now func() time.Time) *userStore {
	return &userStore{
		byName:   make(map[string]*account),
		byUserID: make(map[int]*account),
		nextID:   1,
		cost:     cost,
		now:      now,
	}
}

func (s *userStore) create(username, password, displayName string) (moviesapi.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return moviesapi.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[username]; exists {
		return moviesapi.User{}, errUsernameTaken
	}
	acct := &account{
		user: moviesapi.User{
			ID:          s.nextID,
			Username:    username,
			DisplayName: displayName,
			CreatedAt:   s.now().UTC().Format(time.RFC3339),
		},
		hash: hash,
	}
	s.nextID++
	s.byName[username] = acct
	s.byUserID[acct.user.ID] = acct
	return acct.user, nil
}

func (s *userStore) authenticate(username, password string) (moviesapi.User, bool) {
	s.mu.RLock()
	acct, ok := s.byName[username]
	s.mu.RUnlock()
	if !ok {
		return moviesapi.User{}, false
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return moviesapi.User{}, false
	}
	return acct.user, true
}

func (s *userStore) byID(id int) (moviesapi.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.byUserID[id]
	if !ok {
		return moviesapi.User{}, false
	}
	return acct.user, true
}

func (s *userStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUserID)
}

// tokenIssuer signs HS256 tokens carrying sub, username and exp.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (t tokenIssuer) issue(user moviesapi.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.Itoa(user.ID),
		"username": user.Username,
		"exp":      t.now().Add(t.ttl).Unix(),
	})
	return token.SignedString(t.secret)
}

func (t tokenIssuer) verify(raw string) (int, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return 0, err
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(sub)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q: %w", sub, err)
	}
	return id, nil
}
