// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package moviesapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelscope_catalog_request_total",
			Help: "Total number of catalog API request attempts",
		},
		[]string{"method", "endpoint", "status_class"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelscope_catalog_request_duration_seconds",
			Help:    "Duration of catalog API requests per attempt",
			Buckets: prometheus.ExponentialBuckets(0.01, 2.0, 10),
		},
		[]string{"method", "endpoint", "status_class"},
	)
	requestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelscope_catalog_request_errors_total",
			Help: "Number of catalog API request attempts that failed",
		},
		[]string{"method", "endpoint", "status_class"},
	)
	requestRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelscope_catalog_request_retries_total",
			Help: "Number of catalog API request retries performed",
		},
		[]string{"method", "endpoint", "status_class"},
	)
	circuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelscope_catalog_circuit_state",
			Help: "Circuit breaker state (1 for the active state label)",
		},
		[]string{"state"},
	)
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelscope_catalog_cache_lookups_total",
			Help: "Response cache lookups by resource and result",
		},
		[]string{"resource", "result"},
	)
)

func statusClass(err error, status int) string {
	if err != nil {
		return "error"
	}
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	case status > 0:
		return "1xx"
	}
	return "unknown"
}

func recordAttemptMetrics(method, endpoint string, status int, duration time.Duration, err error, retry bool) {
	class := statusClass(err, status)
	requestTotal.WithLabelValues(method, endpoint, class).Inc()
	requestDuration.WithLabelValues(method, endpoint, class).Observe(duration.Seconds())
	if class != "2xx" {
		requestErrors.WithLabelValues(method, endpoint, class).Inc()
	}
	if retry {
		requestRetries.WithLabelValues(method, endpoint, class).Inc()
	}
}

func setCircuitState(state State) {
	for _, s := range []State{StateClosed, StateOpen, StateHalfOpen} {
		v := 0.0
		if s == state {
			v = 1
		}
		circuitState.WithLabelValues(s.String()).Set(v)
	}
}
