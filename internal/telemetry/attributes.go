// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Catalog attributes
	CatalogTargetKey = "catalog.target"
	CatalogSeqKey    = "catalog.seq"
	CatalogPageKey   = "catalog.page"
	CatalogMovieKey  = "catalog.movie_id"

	// Error attributes
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// CatalogAttributes describes one coordinated fetch. Zero values are omitted.
func CatalogAttributes(target string, seq uint64, page int, movieID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(CatalogTargetKey, target)}
	if seq > 0 {
		attrs = append(attrs, attribute.Int64(CatalogSeqKey, int64(seq)))
	}
	if page > 0 {
		attrs = append(attrs, attribute.Int(CatalogPageKey, page))
	}
	if movieID != "" {
		attrs = append(attrs, attribute.String(CatalogMovieKey, movieID))
	}
	return attrs
}

// ErrorAttributes labels a span with a classified error kind.
func ErrorAttributes(kind string) []attribute.KeyValue {
	if kind == "" {
		return nil
	}
	return []attribute.KeyValue{attribute.String(ErrorTypeKey, kind)}
}
