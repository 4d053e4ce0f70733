// SPDX-License-Identifier: MIT

package moviesapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestBreaker(threshold int, reset time.Duration) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	cb := NewCircuitBreaker(threshold, reset)
	cb.now = clock.now
	return cb, clock
}

func TestCircuitBreaker_InitialState(t *testing.T) {
	cb, _ := newTestBreaker(3, 30*time.Second)
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
}

func TestCircuitBreaker_SuccessKeepsClosed(t *testing.T) {
	cb, _ := newTestBreaker(3, 30*time.Second)
	for i := 0; i < 5; i++ {
		assert.True(t, cb.Allow())
		cb.RecordSuccess()
		assert.Equal(t, StateClosed, cb.State())
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3, 30*time.Second)

	for i := 0; i < 2; i++ {
		assert.True(t, cb.Allow())
		cb.RecordFailure()
		assert.Equal(t, StateClosed, cb.State())
	}
	assert.True(t, cb.Allow())
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow(), "open circuit rejects requests")
}

func TestCircuitBreaker_HalfOpenAdmitsSingleProbe(t *testing.T) {
	cb, clock := newTestBreaker(1, 10*time.Second)
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())

	assert.False(t, cb.Allow())
	clock.advance(11 * time.Second)

	assert.True(t, cb.Allow(), "first request after reset timeout is the probe")
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.False(t, cb.Allow(), "second concurrent probe is rejected")

	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, clock := newTestBreaker(1, 10*time.Second)
	cb.RecordFailure()
	clock.advance(11 * time.Second)
	assert.True(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_ReleaseFreesProbe(t *testing.T) {
	cb, clock := newTestBreaker(1, time.Second)
	cb.RecordFailure()
	clock.advance(2 * time.Second)
	assert.True(t, cb.Allow())
	cb.Release()
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_NilIsAlwaysClosed(t *testing.T) {
	var cb *CircuitBreaker
	assert.True(t, cb.Allow())
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.Release()
}
