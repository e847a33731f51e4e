// SPDX-License-Identifier: MIT

// Package api serves the dashboard read model over HTTP. Every handler reads
// the dataset that is published at the time of the request.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/incidentmap/internal/api/middleware"
	"github.com/ManuGH/incidentmap/internal/bundle"
	"github.com/ManuGH/incidentmap/internal/colorscale"
	"github.com/ManuGH/incidentmap/internal/health"
	"github.com/ManuGH/incidentmap/internal/history"
	"github.com/ManuGH/incidentmap/internal/pipeline"
)

// Loader is the part of the pipeline the API needs.
type Loader interface {
	Current() *pipeline.Dataset
	LastReport() *pipeline.Report
	Reload(ctx context.Context, src bundle.Source, origin string) (*pipeline.Report, error)
}

// HistoryLister lists past loads.
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]history.Entry, error)
}

// Deps holds the collaborators of the server. History and Health are optional.
type Deps struct {
	Loader  Loader
	Source  bundle.Source
	History HistoryLister
	Health  *health.Manager
	Palette colorscale.Palette
	Version string

	RateLimitPerMinute int
	TracingService     string
	AllowedOrigins     []string
}

// Server is the HTTP API.
type Server struct {
	deps   Deps
	router chi.Router
}

// New creates the server and its routes.
func New(deps Deps) *Server {
	if deps.Health == nil {
		deps.Health = health.NewManager(deps.Version)
	}
	if deps.Palette.NoData == "" {
		deps.Palette = colorscale.DefaultPalette()
	}
	s := &Server{deps: deps}
	s.router = s.routes()
	return s
}

// Handler returns the configured HTTP handler with all routes and middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:            true,
		AllowedOrigins:        s.deps.AllowedOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        s.deps.TracingService,
		EnableLogging:         true,
		RateLimitPerMinute:    s.deps.RateLimitPerMinute,
	})

	r.Get("/healthz", s.deps.Health.ServeHealth)
	r.Get("/readyz", s.deps.Health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.With(middleware.ReloadRateLimit()).Post("/reload", s.handleReload)
		r.Get("/loads", s.handleLoads)

		r.Get("/countries", s.dataset(s.handleCountries))
		r.Get("/countries/{name}", s.dataset(s.handleCountry))
		r.Get("/countries/{name}/table", s.dataset(s.handleCountryTable))

		r.Get("/scale", s.dataset(s.handleScale))
		r.Get("/headers", s.dataset(s.handleHeaders))
		r.Get("/translations", s.dataset(s.handleTranslations))

		r.Get("/map/styles", s.dataset(s.handleMapStyles))
		r.Get("/map/geojson", s.dataset(s.handleGeoJSON))

		r.Get("/rankings/{year}", s.dataset(s.handleRankings))
		r.Get("/story", s.dataset(s.handleStory))
		r.Get("/analysis", s.dataset(s.handleAnalysis))
		r.Get("/compare", s.dataset(s.handleCompare))
		r.Get("/search", s.dataset(s.handleSearch))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}
