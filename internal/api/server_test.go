// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/incidentmap/internal/analytics"
	"github.com/ManuGH/incidentmap/internal/bundle"
	"github.com/ManuGH/incidentmap/internal/colorscale"
	"github.com/ManuGH/incidentmap/internal/health"
	"github.com/ManuGH/incidentmap/internal/history"
	"github.com/ManuGH/incidentmap/internal/ingest"
	"github.com/ManuGH/incidentmap/internal/pipeline"
	"github.com/ManuGH/incidentmap/internal/search"
	"github.com/ManuGH/incidentmap/internal/sheet/sheettest"
	"github.com/ManuGH/incidentmap/internal/store"
)

type fixedSource struct {
	files []bundle.File
	err   error
}

func (s *fixedSource) Describe() string { return "fixed" }

func (s *fixedSource) Fetch(context.Context) (*bundle.Bundle, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &bundle.Bundle{Files: s.files}, nil
}

type fakeHistory struct {
	entries []history.Entry
	err     error
	limit   int
}

func (h *fakeHistory) List(_ context.Context, limit int) ([]history.Entry, error) {
	h.limit = limit
	return h.entries, h.err
}

func testFile(t *testing.T, name string, data []byte) bundle.File {
	t.Helper()
	src, ok := ingest.Classify(name)
	require.True(t, ok, name)
	return bundle.File{Source: src, Data: data}
}

func testBundle(t *testing.T) *fixedSource {
	t.Helper()
	return &fixedSource{files: []bundle.File{
		testFile(t, "countries.geo.json", []byte(`{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{"name":"France"},"geometry":null},
			{"type":"Feature","properties":{"name":"Germany"},"geometry":null},
			{"type":"Feature","properties":{"name":"Spain"},"geometry":null}]}`)),
		testFile(t, "sözlük.xlsx", sheettest.XLSX(t, [][]any{
			{"France", "Fransa"},
			{"Germany", "Almanya"},
		})),
		testFile(t, "veriler_2023.xlsx", sheettest.XLSX(t, [][]any{
			{"Ülke", "Kadınları Hedef Alan", "Toplam"},
			{"Fransa", 3, 7},
			{"Almanya", 2, 5},
		})),
		testFile(t, "ulkeler.xlsx", sheettest.XLSX(t, [][]any{
			{"Fransa", nil, nil, nil, nil, "Avrupa", "12.5"},
			{"Almanya", nil, nil, nil, nil, "Avrupa", "4"},
		})),
	}}
}

type fixture struct {
	loader  *pipeline.Loader
	source  *fixedSource
	history *fakeHistory
	handler http.Handler
}

func newFixture(t *testing.T, load bool) *fixture {
	t.Helper()
	f := &fixture{
		loader:  pipeline.NewLoader(pipeline.Options{}),
		source:  testBundle(t),
		history: &fakeHistory{},
	}
	hm := health.NewManager("test")
	hm.RegisterChecker(health.NewDatasetChecker(func() (time.Time, string) {
		if ds := f.loader.Current(); ds != nil {
			return ds.LoadedAt, ""
		}
		return time.Time{}, ""
	}))
	f.handler = New(Deps{
		Loader:  f.loader,
		Source:  f.source,
		History: f.history,
		Health:  hm,
		Version: "test",
	}).Handler()

	if load {
		_, err := f.loader.Load(context.Background(), f.source)
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "10.0.0.1:4000"
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func TestBeforeFirstLoad(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(t, http.MethodGet, "/api/v1/countries")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, ErrorBody{Error: "no_dataset", Detail: "no dataset has been loaded yet"}, decode[ErrorBody](t, w))

	w = f.do(t, http.MethodGet, "/api/v1/status")
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[StatusResponse](t, w)
	assert.False(t, st.Ready)
	assert.Nil(t, st.Dataset)

	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/readyz").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz").Code)
}

func TestStatusAfterLoad(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(t, http.MethodGet, "/api/v1/status")
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[StatusResponse](t, w)
	assert.True(t, st.Ready)
	require.NotNil(t, st.Dataset)
	assert.Equal(t, 2, st.Dataset.Records)
	assert.Equal(t, 3, st.Dataset.Features)
	assert.Equal(t, 12.0, st.Dataset.YearTotals[store.Year2023])
	require.NotNil(t, st.LastLoad)
	assert.Equal(t, history.StatusOK, st.LastLoad.Status)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/readyz").Code)
	assert.Equal(t, "test", st.Version)
}

func TestCountries(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(t, http.MethodGet, "/api/v1/countries")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]CountrySummary](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "almanya", list[0].Key)
	assert.Equal(t, "fransa", list[1].Key)
	assert.Equal(t, "#7f1d1d", list[1].Fill)

	// English names go through the dictionary, Turkish ones match directly.
	for _, name := range []string{"France", "Fransa", "%20fransa%20"} {
		w = f.do(t, http.MethodGet, "/api/v1/countries/"+name)
		require.Equal(t, http.StatusOK, w.Code, name)
		c := decode[CountryResponse](t, w)
		assert.Equal(t, "Fransa", c.Record.DisplayName)
		assert.Equal(t, "Avrupa", c.Record.Continent)
	}

	w = f.do(t, http.MethodGet, "/api/v1/countries/Atlantis")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "unknown_country", decode[ErrorBody](t, w).Error)
}

func TestCountryTable(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(t, http.MethodGet, "/api/v1/countries/Almanya/table")
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode[[]analytics.TableRow](t, w)
	require.Len(t, rows, 2)
	assert.Equal(t, "Kadınları Hedef Alan", rows[0].Feature)
	assert.Equal(t, "2", rows[0].Values[store.Year2023])
	assert.Equal(t, analytics.Missing, rows[0].Values[store.Year2021])
}

func TestScaleHeadersTranslations(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(t, http.MethodGet, "/api/v1/scale")
	require.Equal(t, http.StatusOK, w.Code)
	var sc struct {
		Scale struct {
			Min   float64  `json:"min"`
			Max   *float64 `json:"max"`
			Valid bool     `json:"valid"`
		} `json:"scale"`
		Palette colorscale.Palette `json:"palette"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&sc))
	assert.True(t, sc.Scale.Valid)
	assert.Equal(t, 4.0, sc.Scale.Min)
	require.NotNil(t, sc.Scale.Max)
	assert.Equal(t, 12.5, *sc.Scale.Max)
	assert.Equal(t, colorscale.DefaultPalette().NoData, sc.Palette.NoData)

	w = f.do(t, http.MethodGet, "/api/v1/headers")
	assert.Equal(t, []string{"Kadınları Hedef Alan", "Toplam"}, decode[[]string](t, w))

	w = f.do(t, http.MethodGet, "/api/v1/translations")
	assert.Equal(t, map[string]string{"france": "Fransa", "germany": "Almanya"}, decode[map[string]string](t, w))
}

func TestMapStyles(t *testing.T) {
	f := newFixture(t, true)
	p := colorscale.DefaultPalette()

	w := f.do(t, http.MethodGet, "/api/v1/map/styles")
	require.Equal(t, http.StatusOK, w.Code)
	styles := decode[[]FeatureStyle](t, w)
	require.Len(t, styles, 3)

	assert.Equal(t, "fransa", styles[0].Key)
	assert.True(t, styles[0].HasData)
	assert.NotEqual(t, p.NoData, styles[0].Fill)

	assert.Equal(t, "spain", styles[2].Key)
	assert.False(t, styles[2].HasData)
	assert.Equal(t, p.NoData, styles[2].Fill)

	w = f.do(t, http.MethodGet, "/api/v1/map/geojson")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"Spain"`)
}

func TestRankings(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(t, http.MethodGet, "/api/v1/rankings/2023?focus=Germany&limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	rk := decode[analytics.Ranking](t, w)
	assert.Equal(t, 2, rk.Total)
	require.Len(t, rk.Entries, 1)
	assert.Equal(t, "fransa", rk.Entries[0].Key)
	assert.Equal(t, 7, rk.Entries[0].Value)
	require.NotNil(t, rk.Focus)
	assert.Equal(t, 2, rk.Focus.Rank)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/rankings/1999").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/rankings/2023?limit=x").Code)
}

func TestStoryAndAnalysis(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(t, http.MethodGet, "/api/v1/story")
	require.Equal(t, http.StatusOK, w.Code)
	story := decode[analytics.Story](t, w)
	assert.Equal(t, int64(12), story.Totals[store.Year2023])
	assert.Nil(t, story.Change)

	w = f.do(t, http.MethodGet, "/api/v1/analysis?year=2023&metric=Toplam")
	require.Equal(t, http.StatusOK, w.Code)
	an := decode[analytics.Analysis](t, w)
	assert.Equal(t, "Toplam", an.Metric)
	require.Len(t, an.Bubbles, 2)
	assert.Equal(t, "fransa", an.Bubbles[0].Key)

	w = f.do(t, http.MethodGet, "/api/v1/analysis?year=2023")
	assert.Equal(t, "Kadınları Hedef Alan", decode[analytics.Analysis](t, w).Metric)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/analysis?year=20").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/analysis?metric=Nope").Code)
}

func TestCompare(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(t, http.MethodGet, "/api/v1/compare?c=France&c=Almanya")
	require.Equal(t, http.StatusOK, w.Code)
	cmp := decode[analytics.Comparison](t, w)
	require.Len(t, cmp.Series, 2)
	assert.Equal(t, "fransa", cmp.Leader)
	assert.Equal(t, 2, cmp.Series[1].Gap)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/compare?c=France").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/compare?c=France&c=Fransa").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/v1/compare?c=France&c=Atlantis").Code)
}

func TestSearch(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(t, http.MethodGet, "/api/v1/search?q=fra")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[[]search.Result](t, w)
	require.NotEmpty(t, res)
	assert.Equal(t, "France", res[0].Name)
	assert.Equal(t, "fransa", res[0].Key)
	assert.Equal(t, 100, res[0].Score)

	w = f.do(t, http.MethodGet, "/api/v1/search?q=f")
	assert.Equal(t, []search.Result{}, decode[[]search.Result](t, w))
}

func TestReload(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(t, http.MethodPost, "/api/v1/reload")
	require.Equal(t, http.StatusOK, w.Code)
	rr := decode[ReloadResponse](t, w)
	require.NotNil(t, rr.Report)
	assert.True(t, rr.Report.OK())
	require.NotNil(t, f.loader.Current())

	f.source.err = bundle.ErrBundleLocked
	w = f.do(t, http.MethodPost, "/api/v1/reload")
	require.Equal(t, http.StatusBadGateway, w.Code)
	rr = decode[ReloadResponse](t, w)
	assert.Equal(t, "load_failed", rr.Error)
	assert.Contains(t, rr.Detail, "wrong password")
	assert.Equal(t, history.StatusFailed, rr.Report.Status)
	// The earlier dataset is still served.
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/countries").Code)

	assert.Equal(t, http.StatusMethodNotAllowed, f.do(t, http.MethodGet, "/api/v1/reload").Code)
}

func TestLoads(t *testing.T) {
	f := newFixture(t, false)
	f.history.entries = []history.Entry{{ID: "a", Status: history.StatusOK}}

	w := f.do(t, http.MethodGet, "/api/v1/loads?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, f.history.limit)
	entries := decode[[]history.Entry](t, w)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ID)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/loads?limit=0").Code)

	f.history.err = errors.New("disk gone")
	assert.Equal(t, http.StatusInternalServerError, f.do(t, http.MethodGet, "/api/v1/loads").Code)
}

func TestMetricsAndUnknownRoute(t *testing.T) {
	f := newFixture(t, true)
	f.do(t, http.MethodGet, "/api/v1/countries")

	w := f.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "incidentmap_http_request_duration_seconds")
	assert.Contains(t, w.Body.String(), "incidentmap_records")

	w = f.do(t, http.MethodGet, "/api/v2/nothing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[ErrorBody](t, w).Error)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
