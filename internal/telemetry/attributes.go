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

	// Load attributes
	LoadIDKey      = "load.id"
	LoadSourceKey  = "load.source"
	LoadRecordsKey = "load.records"
	LoadSkippedKey = "load.skipped_rows"

	// Ingest attributes
	IngestKindKey = "ingest.kind"
	IngestYearKey = "ingest.year"
	IngestFileKey = "ingest.file"
	IngestRowsKey = "ingest.rows"

	// Fetch attributes
	FetchFileKey     = "fetch.file"
	FetchBytesKey    = "fetch.bytes"
	FetchCacheHitKey = "fetch.cache_hit"

	// Error attributes
	ErrorKey     = "error"
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

// LoadAttributes creates load-related span attributes.
func LoadAttributes(loadID, source string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(LoadIDKey, loadID),
		attribute.String(LoadSourceKey, source),
	}
}

// LoadResultAttributes describes a finished load.
func LoadResultAttributes(records, skipped int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(LoadRecordsKey, records),
		attribute.Int(LoadSkippedKey, skipped),
	}
}

// IngestAttributes creates per-source span attributes. Year is omitted when
// the source is not year-tagged.
func IngestAttributes(kind, file string, year, rows int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(IngestKindKey, kind),
		attribute.String(IngestFileKey, file),
		attribute.Int(IngestRowsKey, rows),
	}
	if year != 0 {
		attrs = append(attrs, attribute.Int(IngestYearKey, year))
	}
	return attrs
}

// FetchAttributes creates remote-fetch span attributes.
func FetchAttributes(file string, bytes int, cacheHit bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(FetchFileKey, file),
		attribute.Int(FetchBytesKey, bytes),
		attribute.Bool(FetchCacheHitKey, cacheHit),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
