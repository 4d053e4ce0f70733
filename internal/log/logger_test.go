// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &out))
	return out
}

func TestConfigure_AttachesServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "reelscope-test", Version: "v0.0.1"})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("fetch")
	l.Info().Str(FieldEvent, "fetch.issued").Msg("issued")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "reelscope-test", entry[FieldService])
	assert.Equal(t, "v0.0.1", entry[FieldVersion])
	assert.Equal(t, "fetch", entry[FieldComponent])
	assert.Equal(t, "fetch.issued", entry[FieldEvent])
}

func TestConfigure_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "nonsense", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	l := Base()
	l.Debug().Msg("hidden")
	assert.Zero(t, buf.Len(), "debug must be filtered at info level")

	l.Info().Msg("visible")
	assert.NotZero(t, buf.Len())
}

func TestWithContext_AddsCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithTarget(ctx, "list")

	l := WithComponentFromContext(ctx, "moviesapi")
	l.Info().Msg("hello")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-1", entry[FieldRequestID])
	assert.Equal(t, "list", entry[FieldTarget])
	assert.Equal(t, "moviesapi", entry[FieldComponent])
}

func TestContextAccessors_NilSafe(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	assert.Equal(t, "", RequestIDFromContext(nil))
	//nolint:staticcheck
	assert.Equal(t, "", TargetFromContext(nil))
	//nolint:staticcheck
	ctx := ContextWithRequestID(nil, "x")
	assert.Equal(t, "x", RequestIDFromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
