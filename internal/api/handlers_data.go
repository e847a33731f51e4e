// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"
	"net/url"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/incidentmap/internal/analytics"
	"github.com/ManuGH/incidentmap/internal/colorscale"
	"github.com/ManuGH/incidentmap/internal/pipeline"
	"github.com/ManuGH/incidentmap/internal/search"
	"github.com/ManuGH/incidentmap/internal/store"
)

// DefaultSearchLimit bounds search results unless the caller asks otherwise.
const DefaultSearchLimit = 10

// CountrySummary is one entry of the country list.
type CountrySummary struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	Continent  string   `json:"continent,omitempty"`
	ColorValue *float64 `json:"colorValue,omitempty"`
	Fill       string   `json:"fill"`
	HasFlag    bool     `json:"hasFlag"`
}

// CountryResponse is a full record with its map fill.
type CountryResponse struct {
	Record *store.Record `json:"record"`
	Fill   string        `json:"fill"`
}

// FeatureStyle is the map styling of one GeoJSON feature.
type FeatureStyle struct {
	Name       string   `json:"name"`
	Key        string   `json:"key"`
	HasData    bool     `json:"hasData"`
	ColorValue *float64 `json:"colorValue,omitempty"`
	Fill       string   `json:"fill"`
}

// ScaleResponse is the body of GET /api/v1/scale.
type ScaleResponse struct {
	Scale   colorscale.Scale   `json:"scale"`
	Palette colorscale.Palette `json:"palette"`
}

// dataset runs fn with the published dataset, or answers 503.
func (s *Server) dataset(fn func(w http.ResponseWriter, r *http.Request, ds *pipeline.Dataset)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds := s.deps.Loader.Current()
		if ds == nil {
			writeNoDataset(w)
			return
		}
		fn(w, r, ds)
	}
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (s *Server) handleCountries(w http.ResponseWriter, _ *http.Request, ds *pipeline.Dataset) {
	out := make([]CountrySummary, 0, ds.Snapshot.Len())
	ds.Snapshot.Each(func(rec *store.Record) {
		out = append(out, CountrySummary{
			Key:        rec.Key,
			Name:       rec.DisplayName,
			Continent:  rec.Continent,
			ColorValue: rec.ColorValue,
			Fill:       s.deps.Palette.Style(rec, ds.Scale),
			HasFlag:    rec.Flag != "",
		})
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) findCountry(w http.ResponseWriter, r *http.Request, ds *pipeline.Dataset) (*store.Record, bool) {
	name := pathParam(r, "name")
	rec, ok := ds.Resolver().Find(name)
	if !ok {
		writeError(w, http.StatusNotFound, codeUnknownCountry, "no record for "+name)
		return nil, false
	}
	return rec, true
}

func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request, ds *pipeline.Dataset) {
	rec, ok := s.findCountry(w, r, ds)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, CountryResponse{Record: rec, Fill: s.deps.Palette.Style(rec, ds.Scale)})
}

func (s *Server) handleCountryTable(w http.ResponseWriter, r *http.Request, ds *pipeline.Dataset) {
	rec, ok := s.findCountry(w, r, ds)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.DetailTable(rec, ds.Snapshot.OrderedHeaders()))
}

func (s *Server) handleScale(w http.ResponseWriter, _ *http.Request, ds *pipeline.Dataset) {
	writeJSON(w, http.StatusOK, ScaleResponse{Scale: ds.Scale, Palette: s.deps.Palette})
}

func (s *Server) handleHeaders(w http.ResponseWriter, _ *http.Request, ds *pipeline.Dataset) {
	headers := ds.Snapshot.OrderedHeaders()
	if headers == nil {
		headers = []string{}
	}
	writeJSON(w, http.StatusOK, headers)
}

func (s *Server) handleTranslations(w http.ResponseWriter, _ *http.Request, ds *pipeline.Dataset) {
	writeJSON(w, http.StatusOK, ds.Snapshot.Translations())
}

func (s *Server) handleMapStyles(w http.ResponseWriter, _ *http.Request, ds *pipeline.Dataset) {
	res := ds.Resolver()
	names := ds.GeoJSON.Names()
	out := make([]FeatureStyle, 0, len(names))
	for _, name := range names {
		fs := FeatureStyle{Name: name, Key: res.Key(name)}
		rec, ok := res.Resolve(name)
		if ok {
			fs.HasData = true
			fs.ColorValue = rec.ColorValue
		}
		fs.Fill = s.deps.Palette.Style(rec, ds.Scale)
		out = append(out, fs)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, _ *http.Request, ds *pipeline.Dataset) {
	if len(ds.GeoJSONRaw) == 0 {
		writeError(w, http.StatusNotFound, codeNoGeoJSON, "the loaded bundle has no map outline")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(ds.GeoJSONRaw)
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request, ds *pipeline.Dataset) {
	y, ok := store.ParseYear(chi.URLParam(r, "year"))
	if !ok {
		writeBadRequest(w, "year must be one of 2021, 2022, 2023, 2024")
		return
	}
	limit, ok := intParam(r, "limit", analytics.DefaultRankingLimit)
	if !ok || limit <= 0 {
		writeBadRequest(w, "limit must be a positive integer")
		return
	}
	var focus string
	if name := r.URL.Query().Get("focus"); name != "" {
		if rec, found := ds.Resolver().Find(name); found {
			focus = rec.Key
		}
	}
	writeJSON(w, http.StatusOK, analytics.Rankings(ds.Snapshot, y, focus, limit))
}

func (s *Server) handleStory(w http.ResponseWriter, _ *http.Request, ds *pipeline.Dataset) {
	writeJSON(w, http.StatusOK, analytics.BuildStory(ds.Snapshot))
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request, ds *pipeline.Dataset) {
	y := store.Years[len(store.Years)-1]
	if raw := r.URL.Query().Get("year"); raw != "" {
		var ok bool
		if y, ok = store.ParseYear(raw); !ok {
			writeBadRequest(w, "year must be one of 2021, 2022, 2023, 2024")
			return
		}
	}
	metric := r.URL.Query().Get("metric")
	if metric != "" && !slices.Contains(ds.Snapshot.OrderedHeaders(), metric) {
		writeBadRequest(w, "unknown metric "+metric)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Bubbles(ds.Snapshot, s.deps.Palette, y, metric))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request, ds *pipeline.Dataset) {
	c, err := analytics.Compare(ds.Resolver(), s.deps.Palette, r.URL.Query()["c"])
	switch {
	case errors.Is(err, analytics.ErrUnknownCountry):
		writeError(w, http.StatusNotFound, codeUnknownCountry, err.Error())
	case err != nil:
		writeBadRequest(w, err.Error())
	default:
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, ds *pipeline.Dataset) {
	limit, ok := intParam(r, "limit", DefaultSearchLimit)
	if !ok || limit <= 0 {
		writeBadRequest(w, "limit must be a positive integer")
		return
	}
	res := search.Search(r.URL.Query().Get("q"), ds.SearchCandidates(), ds.Resolver(), limit)
	if res == nil {
		res = []search.Result{}
	}
	writeJSON(w, http.StatusOK, res)
}
