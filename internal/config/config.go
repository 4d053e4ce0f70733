// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the reelscope configuration with the precedence
// environment > YAML file > defaults.
package config

import "time"

// AppConfig is the complete runtime configuration.
type AppConfig struct {
	DataDir   string          `yaml:"dataDir"`
	API       APIConfig       `yaml:"api"`
	Cache     CacheConfig     `yaml:"cache"`
	Session   SessionConfig   `yaml:"session"`
	Browse    BrowseConfig    `yaml:"browse"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Mock      MockConfig      `yaml:"mock"`

	// Version is set from the binary, never from file or env.
	Version string `yaml:"-"`
}

// APIConfig tunes the catalog client.
type APIConfig struct {
	BaseURL          string        `yaml:"baseURL"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxRetries       int           `yaml:"maxRetries"`
	Backoff          time.Duration `yaml:"backoff"`
	MaxBackoff       time.Duration `yaml:"maxBackoff"`
	RateLimit        float64       `yaml:"rateLimit"`
	RateLimitBurst   int           `yaml:"rateLimitBurst"`
	BreakerThreshold int           `yaml:"breakerThreshold"`
	BreakerReset     time.Duration `yaml:"breakerReset"`
}

// RedisConfig addresses a Redis server.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CacheConfig selects the response cache.
type CacheConfig struct {
	// Backend is "memory", "redis" or "none".
	Backend   string        `yaml:"backend"`
	GenresTTL time.Duration `yaml:"genresTTL"`
	DetailTTL time.Duration `yaml:"detailTTL"`
	Redis     RedisConfig   `yaml:"redis"`
}

// SessionConfig selects where the credential token is persisted.
type SessionConfig struct {
	// Backend is one of credstore.Backends.
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

// BrowseConfig tunes the browsing screen.
type BrowseConfig struct {
	PerPage int `yaml:"perPage"`
	// WebBase is the web app URL shareable links are built on.
	WebBase string `yaml:"webBase"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// MockConfig configures the mock-server command.
type MockConfig struct {
	Listen    string        `yaml:"listen"`
	Latency   time.Duration `yaml:"latency"`
	RateLimit int           `yaml:"rateLimit"`
	Secret    string        `yaml:"secret"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

// Defaults.
const (
	DefaultBaseURL          = "http://localhost:8000/api"
	DefaultTimeout          = 10 * time.Second
	DefaultMaxRetries       = 2
	DefaultBackoff          = 200 * time.Millisecond
	DefaultMaxBackoff       = 2 * time.Second
	DefaultRateLimit        = 10.0
	DefaultRateLimitBurst   = 5
	DefaultBreakerThreshold = 5
	DefaultBreakerReset     = 30 * time.Second
	DefaultGenresTTL        = 10 * time.Minute
	DefaultDetailTTL        = time.Minute
	DefaultPerPage          = 20
	DefaultMockListen       = "127.0.0.1:8000"
	DefaultMockRateLimit    = 600
	DefaultTokenTTL         = 24 * time.Hour
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Default returns the configuration used when neither file nor environment
// set anything. DataDir and the session path are resolved by the Loader.
func Default() AppConfig {
	return AppConfig{
		API: APIConfig{
			BaseURL:          DefaultBaseURL,
			Timeout:          DefaultTimeout,
			MaxRetries:       DefaultMaxRetries,
			Backoff:          DefaultBackoff,
			MaxBackoff:       DefaultMaxBackoff,
			RateLimit:        DefaultRateLimit,
			RateLimitBurst:   DefaultRateLimitBurst,
			BreakerThreshold: DefaultBreakerThreshold,
			BreakerReset:     DefaultBreakerReset,
		},
		Cache: CacheConfig{
			Backend:   CacheMemory,
			GenresTTL: DefaultGenresTTL,
			DetailTTL: DefaultDetailTTL,
			Redis:     RedisConfig{Addr: "127.0.0.1:6379"},
		},
		Session: SessionConfig{
			Backend: "file",
			Redis:   RedisConfig{Addr: "127.0.0.1:6379"},
		},
		Browse: BrowseConfig{PerPage: DefaultPerPage},
		Log:    LogConfig{Level: "info", Format: "console"},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "development",
		},
		Mock: MockConfig{
			Listen:    DefaultMockListen,
			RateLimit: DefaultMockRateLimit,
			TokenTTL:  DefaultTokenTTL,
		},
	}
}
