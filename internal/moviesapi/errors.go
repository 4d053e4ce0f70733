// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package moviesapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrNetwork     = errors.New("catalog: host unreachable or transport failure")
	ErrAuthInvalid = errors.New("catalog: credentials rejected")
	ErrValidation  = errors.New("catalog: request rejected")
	ErrNotFound    = errors.New("catalog: resource not found")
	ErrUpstream    = errors.New("catalog: internal error (5xx)")
	ErrBadResponse = errors.New("catalog: invalid response format or malformed data")
	ErrCancelled   = errors.New("catalog: request cancelled")
	ErrCircuitOpen = errors.New("catalog: circuit breaker is open")
)

// APIError wraps a sentinel with the context of the failed call.
type APIError struct {
	Sentinel error
	Op       string
	Status   int
	// Detail is the server-supplied message, suitable for showing to a user.
	Detail string
	// Body is a redacted, truncated excerpt of the response body.
	Body string
	Err  error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("moviesapi: %s: %v", e.Op, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	} else if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Sentinel
}

// DetailOf returns the server-supplied message carried by err, if any.
func DetailOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Retryable reports whether repeating the same request could succeed.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrUpstream) ||
		errors.Is(err, ErrCircuitOpen) ||
		errors.Is(err, ErrBadResponse)
}

// Kind returns a short stable label for metrics and span attributes.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrAuthInvalid):
		return "auth_invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	case errors.Is(err, ErrBadResponse):
		return "bad_response"
	case errors.Is(err, ErrNetwork):
		return "network"
	default:
		return "unknown"
	}
}

func sentinelForStatus(status int) error {
	switch {
	case status == 401:
		return ErrAuthInvalid
	case status == 404:
		return ErrNotFound
	case status >= 500:
		return ErrUpstream
	case status >= 400:
		return ErrValidation
	default:
		return ErrBadResponse
	}
}

// parseDetail extracts the "detail" field of an error body. The server sends
// either a plain string or a list of validation entries with a "msg" field.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &entries); err == nil {
		msgs := make([]string, 0, len(entries))
		for _, e := range entries {
			if m := strings.TrimSpace(e.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

const maxBodyExcerpt = 256

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`("(?:access_token|token|password|sid)"\s*:\s*")[^"]*(")`),
	regexp.MustCompile(`((?:access_token|token|password|sid)=)[^&\s]*`),
	regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9\-_.]+`),
}

// redactBody masks credentials and truncates the body for error messages.
func redactBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	for i, re := range secretPatterns {
		if i == 0 {
			s = re.ReplaceAllString(s, `${1}[REDACTED]${2}`)
			continue
		}
		s = re.ReplaceAllString(s, `${1}[REDACTED]`)
	}
	if len(s) > maxBodyExcerpt {
		s = s[:maxBodyExcerpt] + "..."
	}
	return s
}
