// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fetch

import (
	"errors"
	"fmt"

	"github.com/ManuGH/reelscope/internal/moviesapi"
)

var (
	ErrGenresLoadFailed = errors.New("fetch: genres load failed")
	ErrListLoadFailed   = errors.New("fetch: movie list load failed")
	ErrDetailLoadFailed = errors.New("fetch: movie detail load failed")
)

const (
	msgGenresFailed   = "Failed to load genres"
	msgListFailed     = "Failed to load movies. Please try again."
	msgDetailFailed   = "Failed to load movie. Please try again."
	msgDetailNotFound = "Movie not found."
)

// LoadError is the failure a target settles with. Message is safe to show
// to the user.
type LoadError struct {
	Kind    error
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Retryable reports whether reissuing the request could succeed.
func (e *LoadError) Retryable() bool {
	return moviesapi.Retryable(e.Err)
}

// NotFound reports whether the requested resource does not exist.
func (e *LoadError) NotFound() bool {
	return errors.Is(e.Err, moviesapi.ErrNotFound)
}

func genresError(err error) error {
	return &LoadError{Kind: ErrGenresLoadFailed, Message: msgGenresFailed, Err: err}
}

func listError(err error) error {
	return &LoadError{Kind: ErrListLoadFailed, Message: msgListFailed, Err: err}
}

func detailError(err error) error {
	le := &LoadError{Kind: ErrDetailLoadFailed, Message: msgDetailFailed, Err: err}
	if errors.Is(err, moviesapi.ErrNotFound) {
		le.Message = msgDetailNotFound
	}
	return le
}

// Message returns the user-facing text for a target failure.
func Message(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
