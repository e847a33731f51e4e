// SPDX-License-Identifier: MIT
package metrics

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, gauge.Write(metric))
	return metric.GetGauge().GetValue()
}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counterVec.WithLabelValues(labels...).Write(metric))
	return metric.GetCounter().GetValue()
}

func TestRecordSource(t *testing.T) {
	before := getCounterVecValue(t, SourcesIngestedTotal, "yearly")
	skippedBefore := getCounterVecValue(t, SkippedRowsTotal, "yearly")

	RecordSource("yearly", 3)
	RecordSource("yearly", 0)

	assert.Equal(t, before+2, getCounterVecValue(t, SourcesIngestedTotal, "yearly"))
	assert.Equal(t, skippedBefore+3, getCounterVecValue(t, SkippedRowsTotal, "yearly"))
}

func TestRecordPublish(t *testing.T) {
	RecordPublish(12, 1.5, 9, true, time.Unix(1700000000, 0))
	assert.Equal(t, 12.0, GetRecords())
	assert.Equal(t, 1.5, getGaugeValue(t, ScaleMin))
	assert.Equal(t, 9.0, getGaugeValue(t, ScaleMax))
	assert.Equal(t, 1700000000.0, getGaugeValue(t, LastLoadTimestamp))

	RecordPublish(0, 0, math.Inf(-1), false, time.Unix(1700000001, 0))
	assert.Zero(t, GetRecords())
	assert.True(t, math.IsNaN(getGaugeValue(t, ScaleMax)))
}

func TestRecordLoadAndFetch(t *testing.T) {
	okBefore := getCounterVecValue(t, LoadsTotal, StatusOK)
	RecordLoad(StatusOK, 150*time.Millisecond)
	assert.Equal(t, okBefore+1, getCounterVecValue(t, LoadsTotal, StatusOK))

	hitBefore := getCounterVecValue(t, CacheLookupsTotal, "hit")
	RecordCacheLookup(true)
	RecordCacheLookup(false)
	assert.Equal(t, hitBefore+1, getCounterVecValue(t, CacheLookupsTotal, "hit"))

	decryptBefore := getCounterVecValue(t, RemoteFetchesTotal, OutcomeDecrypt)
	RecordFetch(OutcomeDecrypt)
	assert.Equal(t, decryptBefore+1, getCounterVecValue(t, RemoteFetchesTotal, OutcomeDecrypt))

	RecordReload("api")
	assert.GreaterOrEqual(t, getCounterVecValue(t, ReloadsTotal, "api"), 1.0)
}

func TestPromhttpExposure(t *testing.T) {
	RecordSource("dictionary", 0)

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `incidentmap_sources_ingested_total{kind="dictionary"}`))
	assert.Contains(t, body, "incidentmap_records")
}
