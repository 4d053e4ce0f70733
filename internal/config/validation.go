// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/idna"

	"github.com/ManuGH/reelscope/internal/credstore"
	"github.com/ManuGH/reelscope/internal/validate"
)

var httpSchemes = []string{"http", "https"}

// Validate checks a loaded configuration.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.URL("api.baseURL", cfg.API.BaseURL, httpSchemes)
	v.Duration("api.timeout", cfg.API.Timeout, 100*time.Millisecond, 5*time.Minute)
	v.Range("api.maxRetries", cfg.API.MaxRetries, -1, 10)
	v.Duration("api.backoff", cfg.API.Backoff, 0, time.Minute)
	v.Duration("api.maxBackoff", cfg.API.MaxBackoff, cfg.API.Backoff, time.Minute)
	if cfg.API.RateLimit < 0 {
		v.AddError("api.rateLimit", "must not be negative", cfg.API.RateLimit)
	}
	v.Range("api.rateLimitBurst", cfg.API.RateLimitBurst, 0, 1000)
	v.Range("api.breakerThreshold", cfg.API.BreakerThreshold, 0, 1000)
	v.Duration("api.breakerReset", cfg.API.BreakerReset, 0, time.Hour)

	v.OneOf("cache.backend", cfg.Cache.Backend, []string{CacheMemory, CacheRedis, CacheNone})
	v.Duration("cache.genresTTL", cfg.Cache.GenresTTL, 0, 0)
	v.Duration("cache.detailTTL", cfg.Cache.DetailTTL, 0, 0)
	if cfg.Cache.Backend == CacheRedis {
		v.HostPort("cache.redis.addr", cfg.Cache.Redis.Addr)
		v.Range("cache.redis.db", cfg.Cache.Redis.DB, 0, 15)
	}

	v.OneOf("session.backend", cfg.Session.Backend, credstore.Backends)
	switch cfg.Session.Backend {
	case credstore.BackendFile, credstore.BackendSQLite:
		v.NotEmpty("session.path", cfg.Session.Path)
	case credstore.BackendRedis:
		v.HostPort("session.redis.addr", cfg.Session.Redis.Addr)
		v.Range("session.redis.db", cfg.Session.Redis.DB, 0, 15)
	}

	v.Range("browse.perPage", cfg.Browse.PerPage, 1, 100)
	if strings.TrimSpace(cfg.Browse.WebBase) != "" {
		v.URL("browse.webBase", cfg.Browse.WebBase, httpSchemes)
	}

	if _, err := validate.ParseLogLevel(cfg.Log.Level); err != nil {
		v.AddError("log.level", err.Error(), cfg.Log.Level)
	}
	v.OneOf("log.format", cfg.Log.Format, []string{"json", "console"})

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.HostPort("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("telemetry.samplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	v.HostPort("mock.listen", cfg.Mock.Listen)
	v.Duration("mock.latency", cfg.Mock.Latency, 0, time.Minute)
	v.Duration("mock.tokenTTL", cfg.Mock.TokenTTL, time.Minute, 0)

	return v.Err()
}

// NormalizeBaseURL trims the URL, lower-cases its scheme and converts an
// internationalized host to its ASCII form. The trailing slash is dropped.
func NormalizeBaseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)

	host, err := normalizeHost(u.Hostname())
	if err != nil {
		return "", err
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		u.Host = "[" + host + "]"
	} else {
		u.Host = host
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String(), nil
}

func normalizeHost(host string) (string, error) {
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if ip := net.ParseIP(host); ip != nil {
		return strings.ToLower(ip.String()), nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", host, err)
	}
	return strings.ToLower(ascii), nil
}
