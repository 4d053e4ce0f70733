// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package moviesapi

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_UnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("load: %w", &APIError{
		Sentinel: ErrNotFound,
		Op:       "GET /movies/{id}",
		Status:   404,
		Detail:   "Movie not found",
	})

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrNetwork))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "Movie not found", DetailOf(err))
	assert.Equal(t, 404, StatusOf(err))
	assert.Contains(t, err.Error(), "(HTTP 404)")
}

func TestAPIError_ErrorIncludesCause(t *testing.T) {
	err := &APIError{Sentinel: ErrCancelled, Op: "GET /genres", Err: context.Canceled}
	assert.Contains(t, err.Error(), "request cancelled")
	assert.Contains(t, err.Error(), "context canceled")
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string", `{"detail":"Username already taken"}`, "Username already taken"},
		{"validation list", `{"detail":[{"loc":["body","password"],"msg":"String should have at least 8 characters"},{"msg":"second"}]}`, "String should have at least 8 characters; second"},
		{"missing", `{"error":"x"}`, ""},
		{"not json", `<html>`, ""},
		{"empty", ``, ""},
		{"object detail", `{"detail":{"a":1}}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDetail([]byte(tt.body)))
		})
	}
}

func TestRedactBody(t *testing.T) {
	body := `{"access_token":"eyJhbGciOi.abc.def","user":{"username":"neo"},"password":"hunter22"}`
	got := redactBody([]byte(body))
	assert.NotContains(t, got, "eyJhbGciOi")
	assert.NotContains(t, got, "hunter22")
	assert.Contains(t, got, `"access_token":"[REDACTED]"`)
	assert.Contains(t, got, `"username":"neo"`)

	assert.Equal(t, "token=[REDACTED]&x=1", redactBody([]byte("token=abc&x=1")))
	assert.Equal(t, "Authorization: Bearer [REDACTED]", redactBody([]byte("Authorization: Bearer abc.def")))

	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, redactBody(long), maxBodyExcerpt+3)
}

func TestSentinelForStatus(t *testing.T) {
	assert.Equal(t, ErrAuthInvalid, sentinelForStatus(401))
	assert.Equal(t, ErrNotFound, sentinelForStatus(404))
	assert.Equal(t, ErrValidation, sentinelForStatus(409))
	assert.Equal(t, ErrValidation, sentinelForStatus(422))
	assert.Equal(t, ErrUpstream, sentinelForStatus(503))
	assert.Equal(t, ErrBadResponse, sentinelForStatus(302))
}

func TestKindAndRetryable(t *testing.T) {
	wrap := func(s error) error { return &APIError{Sentinel: s, Op: "GET /"} }

	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "cancelled", Kind(wrap(ErrCancelled)))
	assert.Equal(t, "network", Kind(wrap(ErrNetwork)))
	assert.Equal(t, "not_found", Kind(wrap(ErrNotFound)))
	assert.Equal(t, "unknown", Kind(errors.New("boom")))

	assert.True(t, Retryable(wrap(ErrNetwork)))
	assert.True(t, Retryable(wrap(ErrUpstream)))
	assert.True(t, Retryable(wrap(ErrCircuitOpen)))
	assert.False(t, Retryable(wrap(ErrNotFound)))
	assert.False(t, Retryable(wrap(ErrAuthInvalid)))
	assert.False(t, Retryable(wrap(ErrCancelled)))
}
