// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package moviesapi is the HTTP client for the movie catalog API.
package moviesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ManuGH/reelscope/internal/cache"
	xglog "github.com/ManuGH/reelscope/internal/log"
	"github.com/ManuGH/reelscope/internal/platform/httpx"
	"github.com/ManuGH/reelscope/internal/telemetry"
)

// Request describes one catalog API call.
type Request struct {
	Method string
	// Path is relative to the client's base URL, e.g. "/movies/7".
	Path   string
	Params url.Values
	// Body is JSON-encoded when non-nil.
	Body any
	// AuthToken is sent as a bearer token when non-empty.
	AuthToken string
}

func (r Request) op() string {
	return r.Method + " " + routeLabel(r.Path)
}

// Client interacts with the catalog API.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *CircuitBreaker
	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration
	userAgent  string

	cache     cache.Cache
	genresTTL time.Duration
	detailTTL time.Duration
	group     singleflight.Group

	rnd *rand.Rand
	mu  sync.Mutex
}

// Options configures the client behavior. Zero values select defaults.
type Options struct {
	Timeout time.Duration
	// MaxRetries applies to GET requests only. Negative disables retries.
	MaxRetries       int
	Backoff          time.Duration
	MaxBackoff       time.Duration
	RateLimit        rate.Limit
	RateLimitBurst   int
	UserAgent        string
	BreakerThreshold int
	BreakerReset     time.Duration
	// DisableBreaker turns the circuit breaker off entirely.
	DisableBreaker bool

	// HTTPClient overrides the hardened default client.
	HTTPClient *http.Client

	// Cache stores /genres and movie detail bodies. Nil disables caching.
	Cache     cache.Cache
	GenresTTL time.Duration
	DetailTTL time.Duration
}

const (
	defaultTimeout          = 10 * time.Second
	defaultRetries          = 2
	defaultBackoff          = 200 * time.Millisecond
	defaultMaxBackoff       = 2 * time.Second
	defaultRateLimit        = 10
	defaultRateLimitBurst   = 20
	defaultBreakerThreshold = 5
	defaultBreakerReset     = 30 * time.Second
	defaultGenresTTL        = 10 * time.Minute
	defaultUserAgent        = "reelscope"

	maxResponseBytes = 4 << 20
)

// New creates a catalog client for baseURL, e.g. "http://localhost:8000/api".
func New(baseURL string, opts Options) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""

	nopts := normalizeOptions(opts)
	hc := nopts.HTTPClient
	if hc == nil {
		hc = httpx.NewClient(nopts.Timeout)
	}

	c := &Client{
		base:       u,
		httpClient: hc,
		limiter:    rate.NewLimiter(nopts.RateLimit, nopts.RateLimitBurst),
		maxRetries: nopts.MaxRetries,
		backoff:    nopts.Backoff,
		maxBackoff: nopts.MaxBackoff,
		userAgent:  nopts.UserAgent,
		cache:      nopts.Cache,
		genresTTL:  nopts.GenresTTL,
		detailTTL:  nopts.DetailTTL,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter only
	}
	if !nopts.DisableBreaker {
		c.breaker = NewCircuitBreaker(nopts.BreakerThreshold, nopts.BreakerReset)
	}
	return c, nil
}

func normalizeOptions(opts Options) Options {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	switch {
	case opts.MaxRetries < 0:
		opts.MaxRetries = 0
	case opts.MaxRetries == 0:
		opts.MaxRetries = defaultRetries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Limit(defaultRateLimit)
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = defaultRateLimitBurst
	}
	if opts.BreakerThreshold <= 0 {
		opts.BreakerThreshold = defaultBreakerThreshold
	}
	if opts.BreakerReset <= 0 {
		opts.BreakerReset = defaultBreakerReset
	}
	if opts.GenresTTL <= 0 {
		opts.GenresTTL = defaultGenresTTL
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = defaultUserAgent
	}
	return opts
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Breaker exposes the circuit breaker, nil when disabled.
func (c *Client) Breaker() *CircuitBreaker {
	return c.breaker
}

// Do performs req and decodes a successful JSON response into out (which may
// be nil). Every failure is an *APIError wrapping one of the package
// sentinels. Cancelling ctx yields ErrCancelled.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	op := req.op()

	if err := ctx.Err(); err != nil {
		return contextError(op, err)
	}
	if !c.breaker.Allow() {
		return &APIError{Sentinel: ErrCircuitOpen, Op: op}
	}

	status, body, err := c.roundTrip(ctx, req)
	switch {
	case err == nil && status < http.StatusInternalServerError:
		c.breaker.RecordSuccess()
	case ctx.Err() != nil:
		c.breaker.Release()
	default:
		c.breaker.RecordFailure()
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return contextError(op, ctxErr)
		}
		return &APIError{Sentinel: ErrNetwork, Op: op, Err: err}
	}

	if status < 200 || status >= 300 {
		return &APIError{
			Sentinel: sentinelForStatus(status),
			Op:       op,
			Status:   status,
			Detail:   parseDetail(body),
			Body:     redactBody(body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Sentinel: ErrBadResponse, Op: op, Status: status, Body: redactBody(body), Err: err}
	}
	return nil
}

func contextError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return &APIError{Sentinel: ErrCancelled, Op: op, Err: err}
	}
	return &APIError{Sentinel: ErrNetwork, Op: op, Err: err}
}

func (c *Client) endpoint(req Request) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Params) > 0 {
		u.RawQuery = req.Params.Encode()
	}
	return u.String()
}

// roundTrip runs the request with retries and returns the final status and body.
func (c *Client) roundTrip(ctx context.Context, req Request) (int, []byte, error) {
	requestID := xglog.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = xglog.ContextWithRequestID(ctx, requestID)
	}
	logger := xglog.WithComponentFromContext(ctx, "moviesapi")

	var payload []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = b
	}

	rawURL := c.endpoint(req)
	route := routeLabel(req.Path)
	urlLabel := route
	if len(req.Params) > 0 {
		urlLabel += "?"
	}

	tracer := telemetry.Tracer("reelscope.moviesapi")
	ctx, span := tracer.Start(ctx, "reelscope.catalog.request", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.route", route),
		attribute.String("http.url", urlLabel),
		attribute.String("request.id", requestID),
	)
	defer span.End()

	maxAttempts := 1
	if req.Method == http.MethodGet {
		maxAttempts = c.maxRetries + 1
	}

	var lastErr error
	var lastStatus int
	var lastBody []byte
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx, attemptSpan := tracer.Start(ctx, "reelscope.catalog.request.attempt", trace.WithSpanKind(trace.SpanKindClient))
		attemptSpan.SetAttributes(
			attribute.Int("attempt", attempt),
			attribute.Bool("retry", attempt > 1),
		)

		if err := c.limiter.Wait(attemptCtx); err != nil {
			attemptSpan.RecordError(err)
			attemptSpan.SetStatus(codes.Error, err.Error())
			attemptSpan.End()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, nil, err
		}

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, rawURL, bodyReader)
		if err != nil {
			attemptSpan.RecordError(err)
			attemptSpan.SetStatus(codes.Error, err.Error())
			attemptSpan.End()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, nil, err
		}
		c.applyHeaders(httpReq, req, requestID, payload != nil)
		otel.GetTextMapPropagator().Inject(attemptCtx, propagation.HeaderCarrier(httpReq.Header))

		start := time.Now()
		status, body, err := c.exchange(httpReq)
		duration := time.Since(start)

		retry := (err != nil || status >= http.StatusInternalServerError) &&
			attempt < maxAttempts && ctx.Err() == nil
		recordAttemptMetrics(req.Method, route, status, duration, err, retry)

		logger.Debug().
			Str(xglog.FieldMethod, req.Method).
			Str(xglog.FieldPath, route).
			Int(xglog.FieldStatus, status).
			Int(xglog.FieldAttempt, attempt).
			Dur(xglog.FieldDuration, duration).
			Err(err).
			Msg("catalog request attempt")

		attemptSpan.SetAttributes(telemetry.HTTPAttributes(req.Method, route, urlLabel, status)...)
		if err != nil {
			attemptSpan.RecordError(err)
		}
		if err != nil || status >= http.StatusBadRequest {
			statusText := http.StatusText(status)
			if statusText == "" {
				statusText = "request failed"
			}
			attemptSpan.SetStatus(codes.Error, statusText)
		} else {
			attemptSpan.SetStatus(codes.Ok, "")
		}
		attemptSpan.End()

		if err == nil && status < http.StatusInternalServerError {
			span.SetAttributes(telemetry.HTTPAttributes(req.Method, route, urlLabel, status)...)
			if status >= http.StatusBadRequest {
				span.SetStatus(codes.Error, http.StatusText(status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return status, body, nil
		}

		lastErr = err
		lastStatus = status
		lastBody = body

		if !retry {
			break
		}

		wait := c.backoffFor(attempt - 1)
		if err := sleepWithContext(ctx, wait); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, nil, err
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
		span.SetStatus(codes.Error, lastErr.Error())
		return 0, nil, lastErr
	}
	span.SetAttributes(telemetry.HTTPAttributes(req.Method, route, urlLabel, lastStatus)...)
	span.SetStatus(codes.Error, http.StatusText(lastStatus))
	return lastStatus, lastBody, nil
}

// exchange sends one request and reads the whole (bounded) body.
func (c *Client) exchange(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) applyHeaders(httpReq *http.Request, req Request, requestID string, hasBody bool) {
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if hasBody {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.AuthToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.AuthToken)
	}
}

func (c *Client) backoffFor(attempt int) time.Duration {
	wait := c.backoff * time.Duration(1<<attempt)
	if wait > c.maxBackoff {
		wait = c.maxBackoff
	}
	jitter := time.Duration(c.randInt63n(int64(wait/5 + 1)))
	return wait + jitter
}

func (c *Client) randInt63n(n int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rnd.Int63n(n)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// routeLabel collapses numeric path segments so metric labels stay bounded.
func routeLabel(path string) string {
	if path == "" {
		return "/"
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p != "" && strings.Trim(p, "0123456789") == "" {
			parts[i] = "{id}"
		}
	}
	out := strings.Join(parts, "/")
	if !strings.HasPrefix(out, "/") {
		out = "/" + out
	}
	return out
}
