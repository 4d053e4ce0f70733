// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelscope_fetch_issued_total",
		Help: "Requests issued per fetch target",
	}, []string{"target"})

	fetchApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelscope_fetch_applied_total",
		Help: "Successful responses applied to a fetch target",
	}, []string{"target"})

	fetchStale = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelscope_fetch_stale_dropped_total",
		Help: "Responses dropped because a newer request superseded them",
	}, []string{"target"})

	fetchCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelscope_fetch_cancelled_total",
		Help: "In-flight requests aborted by an explicit cancel or the caller context",
	}, []string{"target"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reelscope_fetch_duration_seconds",
		Help:    "Time from issue to settle for applied requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"target", "outcome"})
)
