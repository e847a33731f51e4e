// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics provides Prometheus metrics for dataset loading.
package metrics

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Label cardinality is bounded: kinds, statuses and outcomes are fixed sets.
var (
	// LoadsTotal counts finished loads by status (ok, failed, canceled).
	LoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incidentmap_loads_total",
		Help: "Total number of dataset loads, by status.",
	}, []string{"status"})

	// LoadDuration observes wall time of a full load.
	LoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "incidentmap_load_duration_seconds",
		Help:    "Duration of dataset loads in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	// SourcesIngestedTotal counts ingested sources by kind.
	SourcesIngestedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incidentmap_sources_ingested_total",
		Help: "Total number of ingested sources, by kind.",
	}, []string{"kind"})

	// SkippedRowsTotal counts malformed rows by source kind.
	SkippedRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incidentmap_skipped_rows_total",
		Help: "Total number of rows skipped during ingestion, by kind.",
	}, []string{"kind"})

	// Records is the record count of the published dataset.
	Records = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "incidentmap_records",
		Help: "Number of country records in the published dataset.",
	})

	// ScaleMin and ScaleMax expose the published colour scale.
	ScaleMin = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "incidentmap_color_scale_min",
		Help: "Minimum colour value of the published dataset.",
	})
	ScaleMax = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "incidentmap_color_scale_max",
		Help: "Maximum colour value of the published dataset (NaN when no values).",
	})

	// LastLoadTimestamp is the unix time of the last successful publish.
	LastLoadTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "incidentmap_last_load_timestamp_seconds",
		Help: "Unix timestamp of the last published dataset.",
	})

	// RemoteFetchesTotal counts remote bundle fetches by outcome.
	RemoteFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incidentmap_remote_fetches_total",
		Help: "Total number of remote bundle file fetches, by outcome.",
	}, []string{"outcome"})

	// CacheLookupsTotal counts payload cache lookups by result.
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incidentmap_cache_lookups_total",
		Help: "Total number of bundle cache lookups, by result (hit, miss).",
	}, []string{"result"})

	// ReloadsTotal counts reload triggers by origin (watch, api, startup).
	ReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incidentmap_reloads_total",
		Help: "Total number of reload triggers, by origin.",
	}, []string{"origin"})
)

// Load statuses.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// Fetch outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeHTTPError = "http_error"
	OutcomeTransport = "transport_error"
	OutcomeDecrypt   = "decrypt_error"
)

// RecordLoad records a finished load.
func RecordLoad(status string, d time.Duration) {
	LoadsTotal.WithLabelValues(status).Inc()
	LoadDuration.Observe(d.Seconds())
}

// RecordSource records one ingested source and its skipped rows.
func RecordSource(kind string, skipped int) {
	SourcesIngestedTotal.WithLabelValues(kind).Inc()
	if skipped > 0 {
		SkippedRowsTotal.WithLabelValues(kind).Add(float64(skipped))
	}
}

// RecordPublish updates the dataset gauges after a publish. An invalid scale
// reports max as NaN.
func RecordPublish(records int, scaleMin, scaleMax float64, valid bool, at time.Time) {
	Records.Set(float64(records))
	if valid {
		ScaleMin.Set(scaleMin)
		ScaleMax.Set(scaleMax)
	} else {
		ScaleMin.Set(0)
		ScaleMax.Set(math.NaN())
	}
	LastLoadTimestamp.Set(float64(at.Unix()))
}

// RecordFetch records a remote fetch outcome.
func RecordFetch(outcome string) {
	RemoteFetchesTotal.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	CacheLookupsTotal.WithLabelValues("miss").Inc()
}

// RecordReload records a reload trigger.
func RecordReload(origin string) {
	ReloadsTotal.WithLabelValues(origin).Inc()
}

// GetRecords returns the current value of the records gauge (for testing).
func GetRecords() float64 {
	var m dto.Metric
	if err := Records.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}
