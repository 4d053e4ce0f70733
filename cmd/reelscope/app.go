// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/reelscope/internal/cache"
	"github.com/ManuGH/reelscope/internal/config"
	"github.com/ManuGH/reelscope/internal/credstore"
	xglog "github.com/ManuGH/reelscope/internal/log"
	"github.com/ManuGH/reelscope/internal/moviesapi"
	"github.com/ManuGH/reelscope/internal/platform/httpx"
	"github.com/ManuGH/reelscope/internal/session"
	"github.com/ManuGH/reelscope/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

// app holds the long-lived dependencies of one CLI invocation.
type app struct {
	cfg     config.AppConfig
	logger  zerolog.Logger
	client  *moviesapi.Client
	cache   cache.Cache
	tracing *telemetry.Provider

	kv   credstore.Store
	sess *session.Store
}

func newApp(ctx context.Context, cfg config.AppConfig) (*app, error) {
	a := &app{cfg: cfg, logger: xglog.WithComponent("cli")}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "reelscope",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	a.tracing = tp

	a.cache, err = openCache(cfg.Cache, a.logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.client, err = moviesapi.New(cfg.API.BaseURL, moviesapi.Options{
		Timeout:          cfg.API.Timeout,
		MaxRetries:       cfg.API.MaxRetries,
		Backoff:          cfg.API.Backoff,
		MaxBackoff:       cfg.API.MaxBackoff,
		RateLimit:        rate.Limit(cfg.API.RateLimit),
		RateLimitBurst:   cfg.API.RateLimitBurst,
		UserAgent:        "reelscope/" + cfg.Version,
		BreakerThreshold: cfg.API.BreakerThreshold,
		BreakerReset:     cfg.API.BreakerReset,
		HTTPClient:       httpx.NewClient(cfg.API.Timeout),
		Cache:            a.cache,
		GenresTTL:        cfg.Cache.GenresTTL,
		DetailTTL:        cfg.Cache.DetailTTL,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func openCache(cfg config.CacheConfig, logger zerolog.Logger) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNoOpCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		return rc, nil
	default:
		return cache.NewMemoryCache(time.Minute), nil
	}
}

// session opens the credential backend and restores the persisted session.
func (a *app) session(ctx context.Context) (*session.Store, error) {
	if a.sess != nil {
		return a.sess, nil
	}
	kv, err := credstore.Open(ctx, credstore.Config{
		Backend: a.cfg.Session.Backend,
		Path:    a.cfg.Session.Path,
		Redis: credstore.RedisConfig{
			Addr:     a.cfg.Session.Redis.Addr,
			Password: a.cfg.Session.Redis.Password,
			DB:       a.cfg.Session.Redis.DB,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open session backend %q: %w", a.cfg.Session.Backend, err)
	}
	sess, err := session.Open(ctx, a.client, kv, session.Options{})
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	a.kv, a.sess = kv, sess
	return sess, nil
}

// token returns the current credential, or "" when signed out or when the
// session backend is unavailable.
func (a *app) token() string {
	if a.sess == nil {
		return ""
	}
	return a.sess.Token()
}

func (a *app) Close() {
	var errs []error
	if a.sess != nil {
		errs = append(errs, a.sess.Close())
	}
	if a.kv != nil {
		errs = append(errs, a.kv.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.tracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		errs = append(errs, a.tracing.Shutdown(ctx))
		cancel()
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn().Err(err).Str(xglog.FieldEvent, "cli.shutdown_failed").Msg("cleanup failed")
	}
}
