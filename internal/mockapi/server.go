// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package mockapi is an in-memory catalog backend speaking the same HTTP
// contract as the real API. It backs package tests and the mock-server
// command.
package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ManuGH/reelscope/internal/health"
	xglog "github.com/ManuGH/reelscope/internal/log"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reelscope_mockapi_requests_total",
		Help: "Requests served by the mock catalog backend",
	},
	[]string{"route", "status"},
)

// Options configures the mock backend. Zero values select defaults.
type Options struct {
	Catalog *Catalog
	// Secret signs access tokens. Defaults to a fixed development secret.
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
	// Latency is added to every API request.
	Latency time.Duration
	// Delay, when set, returns an extra per-request delay.
	Delay func(r *http.Request) time.Duration
	// RateLimit is requests per minute per client IP. Negative disables it.
	RateLimit int
	Now       func() time.Time
	Logger    *zerolog.Logger
	// Version is reported by /healthz.
	Version string
}

// Server is the mock catalog backend.
type Server struct {
	catalog *Catalog
	users   *userStore
	tokens  tokenIssuer
	opts    Options
	logger  zerolog.Logger
	health  *health.Manager
}

const (
	defaultTokenTTL  = 24 * time.Hour
	defaultRateLimit = 600
	defaultPerPage   = 20
	maxPerPage       = 100
)

var devSecret = []byte("reelscope-development-secret")

// New builds a mock backend.
func New(opts Options) *Server {
	if opts.Catalog == nil {
		opts.Catalog = SeedCatalog()
	}
	if len(opts.Secret) == 0 {
		opts.Secret = devSecret
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = defaultRateLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := xglog.WithComponent("mockapi")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	s := &Server{
		catalog: opts.Catalog,
		users:   newUserStore(opts.BcryptCost, opts.Now),
		tokens:  tokenIssuer{secret: opts.Secret, ttl: opts.TokenTTL, now: opts.Now},
		opts:    opts,
		logger:  logger,
		health:  health.NewManager(opts.Version),
	}
	s.health.RegisterChecker(health.CheckFunc("catalog", s.checkCatalog))
	s.health.RegisterChecker(health.CheckFunc("accounts", s.checkAccounts))
	return s
}

func (s *Server) checkCatalog(context.Context) health.CheckResult {
	if s.catalog.Len() == 0 {
		return health.CheckResult{Status: health.StatusUnhealthy, Error: "catalog is empty"}
	}
	return health.CheckResult{Status: health.StatusHealthy, Message: fmt.Sprintf("%d movies", s.catalog.Len())}
}

func (s *Server) checkAccounts(context.Context) health.CheckResult {
	return health.CheckResult{Status: health.StatusHealthy, Message: fmt.Sprintf("%d registered", s.users.count())}
}

// Handler returns the HTTP handler. The API lives under /api; /healthz,
// /readyz and /metrics sit at the root.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(rateLimit(s.opts.RateLimit, time.Minute))
		}
		r.Use(s.delay)

		r.Get("/genres", s.handleGenres)
		r.Get("/movies", s.handleListMovies)
		r.Get("/movies/{id}", s.handleGetMovie)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Get("/me", s.handleMe)
		})
	})
	return r
}

func rateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			writeDetail(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		}),
	)
}

func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := s.opts.Latency
		if s.opts.Delay != nil {
			d += s.opts.Delay(r)
		}
		if d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-r.Context().Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()

		s.logger.Debug().
			Str(xglog.FieldMethod, r.Method).
			Str(xglog.FieldPath, route).
			Int(xglog.FieldStatus, status).
			Str(xglog.FieldRequestID, r.Header.Get("X-Request-ID")).
			Dur(xglog.FieldDuration, time.Since(start)).
			Msg("mock request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// validationIssue mirrors one entry of a 422 detail list.
type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeValidation(w http.ResponseWriter, issues []validationIssue) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
}

func issue(where, field, format string, args ...any) validationIssue {
	return validationIssue{
		Loc:  []string{where, field},
		Msg:  fmt.Sprintf(format, args...),
		Type: "value_error",
	}
}
