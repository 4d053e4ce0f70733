// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	xglog "github.com/ManuGH/reelscope/internal/log"
)

const (
	envDataDir    = EnvPrefix + "DATA"
	envConfigFile = EnvPrefix + "CONFIG"

	configFileName = "config.yaml"
)

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath string
	version    string
	// ConsumedEnvKeys records every variable the loader looked at.
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a loader. An empty configPath skips the file layer.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Load applies defaults, then the YAML file, then the environment, and
// validates the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Default()

	if l.configPath != "" {
		if err := l.mergeFile(&cfg, l.configPath); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)
	l.warnUnknownEnv()

	if err := resolvePaths(&cfg); err != nil {
		return cfg, err
	}

	normalized, err := NormalizeBaseURL(cfg.API.BaseURL)
	if err != nil {
		return cfg, fmt.Errorf("api.baseURL: %w", err)
	}
	cfg.API.BaseURL = normalized
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, err
	}

	logger := xglog.WithComponent("config")
	logger.Debug().
		Str(xglog.FieldEvent, "config.loaded").
		Str("file", l.configPath).
		Str(xglog.FieldBaseURL, MaskURL(cfg.API.BaseURL)).
		Str(xglog.FieldBackend, cfg.Session.Backend).
		Msg("configuration loaded")
	return cfg, nil
}

// mergeFile decodes path over cfg. Unknown keys are an error.
func (l *Loader) mergeFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}
	return decodeStrict(data, cfg)
}

func decodeStrict(data []byte, cfg *AppConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "not found in type") {
			return fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// LoadFile decodes a YAML file over the defaults without env or validation.
func LoadFile(path string) (AppConfig, error) {
	cfg := Default()
	err := NewLoader(path, "").mergeFile(&cfg, path)
	return cfg, err
}

func (l *Loader) envString(key, def string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, def)
}

func (l *Loader) envInt(key string, def int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, def)
}

func (l *Loader) envFloat(key string, def float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, def)
}

func (l *Loader) envBool(key string, def bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, def)
}

func (l *Loader) envDuration(key string, def time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, def)
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	const p = EnvPrefix
	l.ConsumedEnvKeys[envConfigFile] = struct{}{}

	cfg.DataDir = l.envString(envDataDir, cfg.DataDir)

	cfg.API.BaseURL = l.envString(p+"API_URL", cfg.API.BaseURL)
	cfg.API.Timeout = l.envDuration(p+"API_TIMEOUT", cfg.API.Timeout)
	cfg.API.MaxRetries = l.envInt(p+"API_RETRIES", cfg.API.MaxRetries)
	cfg.API.RateLimit = l.envFloat(p+"API_RATE_LIMIT", cfg.API.RateLimit)
	cfg.API.RateLimitBurst = l.envInt(p+"API_RATE_BURST", cfg.API.RateLimitBurst)
	cfg.API.BreakerThreshold = l.envInt(p+"API_BREAKER_THRESHOLD", cfg.API.BreakerThreshold)
	cfg.API.BreakerReset = l.envDuration(p+"API_BREAKER_RESET", cfg.API.BreakerReset)

	cfg.Cache.Backend = strings.ToLower(l.envString(p+"CACHE_BACKEND", cfg.Cache.Backend))
	cfg.Cache.GenresTTL = l.envDuration(p+"CACHE_GENRES_TTL", cfg.Cache.GenresTTL)
	cfg.Cache.DetailTTL = l.envDuration(p+"CACHE_DETAIL_TTL", cfg.Cache.DetailTTL)

	// One Redis server usually serves both the cache and the session.
	if addr := l.envString(p+"REDIS_ADDR", ""); addr != "" {
		cfg.Cache.Redis.Addr, cfg.Session.Redis.Addr = addr, addr
	}
	if pw := l.envString(p+"REDIS_PASSWORD", ""); pw != "" {
		cfg.Cache.Redis.Password, cfg.Session.Redis.Password = pw, pw
	}
	cfg.Cache.Redis.DB = l.envInt(p+"REDIS_DB", cfg.Cache.Redis.DB)
	cfg.Session.Redis.DB = l.envInt(p+"SESSION_REDIS_DB", cfg.Session.Redis.DB)

	cfg.Session.Backend = strings.ToLower(l.envString(p+"SESSION_BACKEND", cfg.Session.Backend))
	cfg.Session.Path = l.envString(p+"SESSION_PATH", cfg.Session.Path)

	cfg.Browse.PerPage = l.envInt(p+"PER_PAGE", cfg.Browse.PerPage)
	cfg.Browse.WebBase = l.envString(p+"WEB_BASE", cfg.Browse.WebBase)

	cfg.Log.Level = strings.ToLower(l.envString(p+"LOG_LEVEL", cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(l.envString(p+"LOG_FORMAT", cfg.Log.Format))

	cfg.Telemetry.Enabled = l.envBool(p+"TRACING_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = strings.ToLower(l.envString(p+"TRACING_EXPORTER", cfg.Telemetry.Exporter))
	cfg.Telemetry.Endpoint = l.envString(p+"TRACING_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(p+"TRACING_SAMPLE_RATE", cfg.Telemetry.SamplingRate)
	cfg.Telemetry.Environment = l.envString(p+"TRACING_ENVIRONMENT", cfg.Telemetry.Environment)

	cfg.Mock.Listen = l.envString(p+"MOCK_LISTEN", cfg.Mock.Listen)
	cfg.Mock.Latency = l.envDuration(p+"MOCK_LATENCY", cfg.Mock.Latency)
	cfg.Mock.RateLimit = l.envInt(p+"MOCK_RATE_LIMIT", cfg.Mock.RateLimit)
	cfg.Mock.Secret = l.envString(p+"MOCK_SECRET", cfg.Mock.Secret)
	cfg.Mock.TokenTTL = l.envDuration(p+"MOCK_TOKEN_TTL", cfg.Mock.TokenTTL)
}

// warnUnknownEnv reports REELSCOPE_ variables no setting reads, which are
// usually typos.
func (l *Loader) warnUnknownEnv() {
	var unknown []string
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if _, ok := l.ConsumedEnvKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return
	}
	sort.Strings(unknown)
	logger := xglog.WithComponent("config")
	logger.Warn().
		Str(xglog.FieldEvent, "config.unknown_env").
		Strs("keys", unknown).
		Msg("ignoring unknown environment variables")
}

// resolvePaths makes DataDir absolute and derives the session path from it.
func resolvePaths(cfg *AppConfig) error {
	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return err
		}
		cfg.DataDir = dir
	}
	abs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = abs

	if cfg.Session.Path == "" {
		switch cfg.Session.Backend {
		case "file", "":
			cfg.Session.Path = filepath.Join(abs, "session.json")
		case "sqlite":
			cfg.Session.Path = filepath.Join(abs, "session.db")
		case "badger":
			cfg.Session.Path = filepath.Join(abs, "session.badger")
		}
	}
	return nil
}

// DefaultDataDir is $REELSCOPE_DATA or the per-user config directory.
func DefaultDataDir() (string, error) {
	if dir := os.Getenv(envDataDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(base, "reelscope"), nil
}

// DefaultConfigPath returns $REELSCOPE_CONFIG, or config.yaml in the data
// directory when that file exists, or "".
func DefaultConfigPath() string {
	if p := os.Getenv(envConfigFile); p != "" {
		return p
	}
	dir, err := DefaultDataDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, configFileName)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}
