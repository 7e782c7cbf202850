// Package api exposes the enrichment and analytics surfaces over HTTP for
// the storefront and the operations dashboard.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/veldhoen/tapster/internal/service"
	"github.com/veldhoen/tapster/internal/taxonomy"
)

// Server bundles the handlers with their dependencies.
type Server struct {
	enricher service.Enricher
	recorder service.Recorder
	taxonomy *taxonomy.Taxonomy
}

// NewServer creates an API server over the given services.
func NewServer(enricher service.Enricher, recorder service.Recorder, tax *taxonomy.Taxonomy) *Server {
	return &Server{
		enricher: enricher,
		recorder: recorder,
		taxonomy: tax,
	}
}

// Router builds the HTTP routing table. Middleware order matters:
// recover first so nothing escapes, then request id, then logging.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(recoverer)
	r.Use(requestID)
	r.Use(logging)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/orders/enrich", s.handleEnrichOrder)
		r.Get("/analytics", s.handleAnalytics)
		r.Post("/analytics/refresh", s.handleAnalyticsRefresh)
		r.Get("/categories", s.handleCategories)
	})

	return r
}
