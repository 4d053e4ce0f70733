// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	xglog "github.com/ManuGH/reelscope/internal/log"
	"github.com/ManuGH/reelscope/internal/validate"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("REELSCOPE_DATA", dir)
	t.Setenv("REELSCOPE_CONFIG", "")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, "file", cfg.Session.Backend)
	assert.Equal(t, filepath.Join(dir, "session.json"), cfg.Session.Path)
	assert.Equal(t, 20, cfg.Browse.PerPage)
	assert.Equal(t, "v1.2.3", cfg.Version)
}

func TestLoad_LogsLoadAndUnknownEnv(t *testing.T) {
	isolate(t)
	t.Setenv("REELSCOPE_NOT_A_SETTING", "1")

	var buf bytes.Buffer
	prev := zerolog.GlobalLevel()
	xglog.Configure(xglog.Config{Level: "debug", Output: &buf})
	t.Cleanup(func() {
		xglog.Configure(xglog.Config{Level: "error"})
		zerolog.SetGlobalLevel(prev)
	})

	_, err := NewLoader("", "v1").Load()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"event":"config.loaded"`)
	assert.Contains(t, out, `"event":"config.unknown_env"`)
	assert.Contains(t, out, "REELSCOPE_NOT_A_SETTING")
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
api:
  baseURL: https://catalog.example/api/
  timeout: 3s
  maxRetries: 4
browse:
  perPage: 50
session:
  backend: sqlite
log:
  level: debug
`)
	t.Setenv("REELSCOPE_API_RETRIES", "1")
	t.Setenv("REELSCOPE_LOG_FORMAT", "JSON")

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "https://catalog.example/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout, "file over default")
	assert.Equal(t, 1, cfg.API.MaxRetries, "env over file")
	assert.Equal(t, 50, cfg.Browse.PerPage)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "session.db", filepath.Base(cfg.Session.Path))
	assert.Equal(t, DefaultBreakerThreshold, cfg.API.BreakerThreshold, "untouched keys keep defaults")
}

func TestLoad_UnknownFieldIsRejected(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "api:\n  baseUrl: http://typo.example\n")

	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigField), err.Error())
}

func TestLoad_EmptyFileIsDefaults(t *testing.T) {
	isolate(t)
	cfg, err := NewLoader(writeConfig(t, ""), "").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	isolate(t)
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml"), "").Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_InvalidEnvFallsBackToDefault(t *testing.T) {
	isolate(t)
	t.Setenv("REELSCOPE_API_TIMEOUT", "soon")
	t.Setenv("REELSCOPE_PER_PAGE", "many")

	cfg, err := NewLoader("", "").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, DefaultPerPage, cfg.Browse.PerPage)
}

func TestLoad_RedisAddrAppliesToCacheAndSession(t *testing.T) {
	isolate(t)
	t.Setenv("REELSCOPE_REDIS_ADDR", "10.0.0.5:6380")
	t.Setenv("REELSCOPE_CACHE_BACKEND", "redis")
	t.Setenv("REELSCOPE_SESSION_BACKEND", "redis")

	cfg, err := NewLoader("", "").Load()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:6380", cfg.Cache.Redis.Addr)
	assert.Equal(t, "10.0.0.5:6380", cfg.Session.Redis.Addr)
	assert.Empty(t, cfg.Session.Path)
}

func TestLoad_ValidationErrors(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
api:
  baseURL: ftp://catalog.example
cache:
  backend: memcached
browse:
  perPage: 500
`)
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)

	var ve validate.ValidationError
	require.ErrorAs(t, err, &ve)
	fields := make([]string, 0, len(ve.Errors()))
	for _, e := range ve.Errors() {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"api.baseURL", "cache.backend", "browse.perPage"}, fields)
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" HTTP://Localhost:8000/api/ ", "http://localhost:8000/api"},
		{"https://bücher.example/api", "https://xn--bcher-kva.example/api"},
		{"http://[::1]:8000/api", "http://[::1]:8000/api"},
		{"https://catalog.example.", "https://catalog.example"},
	}
	for _, tt := range tests {
		got, err := NormalizeBaseURL(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := NormalizeBaseURL("not a url")
	assert.Error(t, err)
}

func TestDefaultConfigPath(t *testing.T) {
	dir := isolate(t)
	assert.Equal(t, "", DefaultConfigPath())

	p := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("{}\n"), 0o600))
	assert.Equal(t, p, DefaultConfigPath())

	t.Setenv("REELSCOPE_CONFIG", "/etc/reelscope.yaml")
	assert.Equal(t, "/etc/reelscope.yaml", DefaultConfigPath())
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "mock:\n  latency: 250ms\n"))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Mock.Latency)
	assert.Equal(t, DefaultMockListen, cfg.Mock.Listen)
}
