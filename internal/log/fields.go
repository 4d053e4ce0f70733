// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService   = "service"
	FieldVersion   = "version"
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldEvent     = "event"

	// Fetch coordination fields
	FieldTarget  = "target"
	FieldSeq     = "seq"
	FieldLatest  = "latest_seq"
	FieldMovieID = "movie_id"
	FieldAddress = "address"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// HTTP fields
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldStatus   = "status"
	FieldAttempt  = "attempt"
	FieldBaseURL  = "base_url"
	FieldDuration = "duration"

	// Session fields
	FieldUsername = "username"
	FieldBackend  = "backend"
)
