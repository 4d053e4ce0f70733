// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fetch coordinates the catalog requests derived from the browsing
// state. Each Target tracks one request lifecycle and applies only the
// response of its most recently issued request.
package fetch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/reelscope/internal/log"
	"github.com/ManuGH/reelscope/internal/moviesapi"
)

// Status is the variant tag of a Result.
type Status int

const (
	Idle Status = iota
	Loading
	Success
	Failure
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "idle"
	}
}

// Result is the current outcome of a target. Data is set only for Success
// and Err only for Failure; Loading carries neither.
type Result[T any] struct {
	Status Status
	Data   T
	Err    error
	Seq    uint64
}

// Fetcher performs one request. seq identifies the issue it belongs to.
type Fetcher[T any] func(ctx context.Context, seq uint64) (T, error)

// Target is one independently tracked request lifecycle.
type Target[T any] struct {
	name   string
	logger zerolog.Logger

	mu        sync.Mutex
	seq       uint64
	result    Result[T]
	prev      Result[T] // last settled result, restored by Cancel
	cancel    context.CancelFunc
	abandoned uint64 // seq of the request aborted by Cancel
	settled   chan struct{}
	listeners []func(Result[T])
	closed    bool

	wg sync.WaitGroup
}

// NewTarget returns an idle target. name labels logs and metrics.
func NewTarget[T any](name string, logger zerolog.Logger) *Target[T] {
	return &Target[T]{
		name:    name,
		logger:  logger.With().Str(xglog.FieldTarget, name).Logger(),
		settled: make(chan struct{}),
	}
}

// Name returns the target label.
func (t *Target[T]) Name() string { return t.name }

// Result returns the current result.
func (t *Target[T]) Result() Result[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Subscribe registers fn to be called on every transition. Callbacks run
// with the target locked and must not call back into it.
func (t *Target[T]) Subscribe(fn func(Result[T])) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Issue cancels the request in flight, moves to Loading and runs fn on a new
// goroutine. It returns the sequence number of the new request, or 0 once
// the target is closed.
func (t *Target[T]) Issue(ctx context.Context, fn Fetcher[T]) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0
	}

	if t.cancel != nil {
		// The superseded response is counted as stale when it returns.
		t.cancel()
	}
	if t.result.Status != Loading {
		t.prev = t.result
	}
	t.seq++
	seq := t.seq

	rctx, cancel := context.WithCancel(xglog.ContextWithTarget(ctx, t.name))
	t.cancel = cancel
	t.resetSettledLocked()
	t.setLocked(Result[T]{Status: Loading, Seq: seq})
	fetchIssued.WithLabelValues(t.name).Inc()

	t.wg.Add(1)
	go t.run(rctx, cancel, seq, fn)
	return seq
}

func (t *Target[T]) run(ctx context.Context, cancel context.CancelFunc, seq uint64, fn Fetcher[T]) {
	defer t.wg.Done()
	defer cancel()

	start := time.Now()
	data, err := fn(ctx, seq)
	elapsed := time.Since(start)

	t.mu.Lock()
	defer t.mu.Unlock()

	if seq != t.seq {
		if seq != t.abandoned {
			fetchStale.WithLabelValues(t.name).Inc()
		}
		t.logger.Debug().
			Str(xglog.FieldEvent, "fetch.stale_dropped").
			Uint64(xglog.FieldSeq, seq).
			Uint64(xglog.FieldLatest, t.seq).
			Msg("dropping response of superseded request")
		return
	}
	t.cancel = nil

	if errors.Is(ctx.Err(), context.Canceled) || isCancellation(err) {
		// Cancelled by the caller's context: nothing replaces the request.
		// A deadline falls through and settles as a failure.
		fetchCancelled.WithLabelValues(t.name).Inc()
		t.setLocked(t.prev)
		t.closeSettledLocked()
		return
	}

	if err != nil {
		fetchDuration.WithLabelValues(t.name, "failure").Observe(elapsed.Seconds())
		t.logger.Debug().
			Err(err).
			Str(xglog.FieldEvent, "fetch.failed").
			Uint64(xglog.FieldSeq, seq).
			Msg("request failed")
		t.setLocked(Result[T]{Status: Failure, Err: err, Seq: seq})
	} else {
		fetchDuration.WithLabelValues(t.name, "success").Observe(elapsed.Seconds())
		fetchApplied.WithLabelValues(t.name).Inc()
		t.setLocked(Result[T]{Status: Success, Data: data, Seq: seq})
	}
	t.closeSettledLocked()
}

// Cancel aborts the request in flight and restores the result that was
// current before it was issued. It reports whether anything was cancelled.
func (t *Target[T]) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.result.Status != Loading || t.cancel == nil {
		return false
	}
	t.cancel()
	t.cancel = nil
	t.abandoned = t.seq
	t.seq++
	fetchCancelled.WithLabelValues(t.name).Inc()
	t.setLocked(t.prev)
	t.closeSettledLocked()
	return true
}

// Await blocks until the latest request settles and returns the result.
// A request issued while waiting extends the wait.
func (t *Target[T]) Await(ctx context.Context) (Result[T], error) {
	for {
		t.mu.Lock()
		if t.result.Status != Loading {
			r := t.result
			t.mu.Unlock()
			return r, nil
		}
		ch := t.settled
		t.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return Result[T]{}, ctx.Err()
		}
	}
}

// Close cancels the request in flight and waits for every request
// goroutine to return. Later Issue calls are ignored.
func (t *Target[T]) Close() {
	t.mu.Lock()
	t.closed = true
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.mu.Unlock()
	t.wg.Wait()
}

func (t *Target[T]) setLocked(r Result[T]) {
	old := t.result.Status
	t.result = r
	if old != r.Status {
		t.logger.Debug().
			Str(xglog.FieldEvent, "fetch.transition").
			Str(xglog.FieldOldState, old.String()).
			Str(xglog.FieldNewState, r.Status.String()).
			Uint64(xglog.FieldSeq, t.seq).
			Msg("target state changed")
	}
	for _, fn := range t.listeners {
		fn(r)
	}
}

// resetSettledLocked wakes waiters of the superseded request so they
// re-check against the new one.
func (t *Target[T]) resetSettledLocked() {
	t.closeSettledLocked()
	t.settled = make(chan struct{})
}

func (t *Target[T]) closeSettledLocked() {
	select {
	case <-t.settled:
	default:
		close(t.settled)
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, moviesapi.ErrCancelled)
}
