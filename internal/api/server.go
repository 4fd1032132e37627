package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docwiki/internal/config"
	"github.com/dgallion1/docwiki/internal/pipeline"
	"github.com/dgallion1/docwiki/internal/wikistore"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// PageStore is the subset of the wikistore client used by the page endpoints.
type PageStore interface {
	ListPages(ctx context.Context, prefix string, limit int) ([]wikistore.StoredPage, error)
	GetPage(ctx context.Context, path string) (*wikistore.StoredPage, error)
	DeletePage(ctx context.Context, path string) error
}

// Server is the HTTP API server for docwiki.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	pages        PageStore
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. pages may be nil when
// no wikistore is configured.
func NewServer(orch *pipeline.Orchestrator, pages PageStore, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		pages:        pages,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DocwikiAPIKey))

		r.Get("/api/dialects", s.handleDialects)
		r.Post("/api/render", s.handleRender)

		r.Post("/api/convert", s.handleConvert)
		r.Get("/api/convert/{jobID}/status", s.handleConvertStatus)
		r.Post("/api/convert/batch", s.handleBatchConvert)

		r.Get("/api/pages", s.handleListPages)
		r.Get("/api/pages/*", s.handleGetPage)
		r.Delete("/api/pages/*", s.handleDeletePage)

		r.Get("/api/stats/render", s.handleRenderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

func (s *Server) handleDialects(w http.ResponseWriter, r *http.Request) {
	reg := s.orchestrator.Dialects()
	writeJSON(w, http.StatusOK, map[string]any{
		"dialects": reg.Names(),
		"default":  reg.Default(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
