// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ManuGH/incidentmap/internal/colorscale"
	"github.com/ManuGH/incidentmap/internal/history"
	xglog "github.com/ManuGH/incidentmap/internal/log"
	"github.com/ManuGH/incidentmap/internal/pipeline"
	"github.com/ManuGH/incidentmap/internal/store"
)

// DatasetSummary describes the published dataset.
type DatasetSummary struct {
	LoadID     string                 `json:"loadId"`
	Source     string                 `json:"source"`
	LoadedAt   time.Time              `json:"loadedAt"`
	Records    int                    `json:"records"`
	Headers    int                    `json:"headers"`
	Features   int                    `json:"features"`
	Scale      colorscale.Scale       `json:"scale"`
	YearTotals map[store.Year]float64 `json:"yearTotals"`
}

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Version  string           `json:"version"`
	Ready    bool             `json:"ready"`
	Dataset  *DatasetSummary  `json:"dataset,omitempty"`
	LastLoad *pipeline.Report `json:"lastLoad,omitempty"`
}

// ReloadResponse is the body of POST /api/v1/reload. Error is set when the
// load failed; the report is returned either way.
type ReloadResponse struct {
	Error  string           `json:"error,omitempty"`
	Detail string           `json:"detail,omitempty"`
	Report *pipeline.Report `json:"report"`
}

func summarize(ds *pipeline.Dataset) *DatasetSummary {
	return &DatasetSummary{
		LoadID:     ds.LoadID,
		Source:     ds.Source,
		LoadedAt:   ds.LoadedAt,
		Records:    ds.Snapshot.Len(),
		Headers:    len(ds.Snapshot.OrderedHeaders()),
		Features:   len(ds.GeoJSON.Names()),
		Scale:      ds.Scale,
		YearTotals: ds.Snapshot.YearTotals(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Version:  s.deps.Version,
		LastLoad: s.deps.Loader.LastReport(),
	}
	if ds := s.deps.Loader.Current(); ds != nil {
		resp.Ready = true
		resp.Dataset = summarize(ds)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.deps.Source == nil {
		writeError(w, http.StatusServiceUnavailable, codeLoadFailed, "no bundle source configured")
		return
	}
	// Other callers may share this load; a client hanging up must not
	// cancel it for them.
	ctx := context.WithoutCancel(r.Context())
	rep, err := s.deps.Loader.Reload(ctx, s.deps.Source, pipeline.OriginAPI)
	if err != nil {
		logger := xglog.WithComponentFromContext(r.Context(), "api")
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "reload.failed").
			Msg("reload failed")
		writeJSON(w, http.StatusBadGateway, ReloadResponse{Error: codeLoadFailed, Detail: err.Error(), Report: rep})
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{Report: rep})
}

func (s *Server) handleLoads(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeJSON(w, http.StatusOK, []history.Entry{})
		return
	}
	limit, ok := intParam(r, "limit", history.DefaultListLimit)
	if !ok || limit <= 0 {
		writeBadRequest(w, "limit must be a positive integer")
		return
	}
	entries, err := s.deps.History.List(r.Context(), limit)
	if err != nil {
		logger := xglog.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "history.list_failed").
			Msg("could not list load history")
		writeError(w, http.StatusInternalServerError, codeInternal, "load history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// intParam parses an optional integer query parameter.
func intParam(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
