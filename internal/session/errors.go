// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"errors"
	"fmt"

	"github.com/ManuGH/reelscope/internal/moviesapi"
)

var (
	ErrInvalidCredentials   = errors.New("session: invalid username or password")
	ErrRegistrationRejected = errors.New("session: registration rejected")
	ErrValidationRejected   = errors.New("session: request rejected by server validation")
	ErrVerificationInFlight = errors.New("session: verification already in progress")
	ErrNotAuthenticated     = errors.New("session: not authenticated")
)

const (
	loginFallback    = "Login failed. Please try again."
	registerFallback = "Registration failed. Please try again."
)

// AuthError is returned by Login and Register. Kind is one of the package
// sentinels or nil for transport failures; Err is the underlying cause.
type AuthError struct {
	Op      string // "login" or "register"
	Kind    error
	Message string // server-supplied, safe to show inline
	Err     error
}

func (e *AuthError) Error() string {
	msg := "session: " + e.Op + " failed"
	if e.Kind != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Kind)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the session sentinel and the transport cause.
func (e *AuthError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func classifyAuthError(op string, err error) error {
	ae := &AuthError{Op: op, Err: err, Message: moviesapi.DetailOf(err)}
	switch {
	case op == "login" && errors.Is(err, moviesapi.ErrAuthInvalid):
		ae.Kind = ErrInvalidCredentials
	case op == "register" && moviesapi.StatusOf(err) == 409:
		ae.Kind = ErrRegistrationRejected
	case errors.Is(err, moviesapi.ErrValidation), errors.Is(err, moviesapi.ErrAuthInvalid):
		ae.Kind = ErrValidationRejected
	}
	return ae
}

// UserMessage renders err as an inline form message: the server's own
// message when it sent one, otherwise a generic retry prompt.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		if ae.Message != "" {
			return ae.Message
		}
		if ae.Op == "register" {
			return registerFallback
		}
		return loginFallback
	}
	if d := moviesapi.DetailOf(err); d != "" {
		return d
	}
	return loginFallback
}
