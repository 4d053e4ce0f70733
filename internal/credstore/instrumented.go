// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package credstore

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelscope_credstore_ops_total",
			Help: "Total credential store operations",
		},
		[]string{"backend", "op", "result"}, // result=success/error
	)
	storeLat = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelscope_credstore_op_seconds",
			Help:    "Credential store operation latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)
)

// instrumentedStore wraps any Store to capture metrics.
type instrumentedStore struct {
	inner   Store
	backend string
}

// NewInstrumentedStore records per-backend operation counts and latencies.
func NewInstrumentedStore(inner Store, backend string) Store {
	return &instrumentedStore{inner: inner, backend: backend}
}

func (i *instrumentedStore) observe(op string, start time.Time, err error) {
	res := "success"
	if err != nil {
		res = "error"
	}
	storeOps.WithLabelValues(i.backend, op, res).Inc()
	storeLat.WithLabelValues(i.backend, op).Observe(time.Since(start).Seconds())
}

func (i *instrumentedStore) Get(ctx context.Context, key string) (v string, ok bool, err error) {
	start := time.Now()
	defer func() { i.observe("get", start, err) }()
	return i.inner.Get(ctx, key)
}

func (i *instrumentedStore) Put(ctx context.Context, entries map[string]string) (err error) {
	start := time.Now()
	defer func() { i.observe("put", start, err) }()
	return i.inner.Put(ctx, entries)
}

func (i *instrumentedStore) Delete(ctx context.Context, keys ...string) (err error) {
	start := time.Now()
	defer func() { i.observe("delete", start, err) }()
	return i.inner.Delete(ctx, keys...)
}

func (i *instrumentedStore) Close() error { return i.inner.Close() }

// Watch forwards to the wrapped store when it supports watching.
func (i *instrumentedStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := i.inner.(Watcher); ok {
		return w.Watch(ctx)
	}
	return nil, ErrWatchUnsupported
}
