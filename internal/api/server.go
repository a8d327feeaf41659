package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/quadboard/internal/board"
	"github.com/dgallion1/quadboard/internal/config"
	"github.com/dgallion1/quadboard/internal/drafts"
	"github.com/dgallion1/quadboard/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server for quadboard.
type Server struct {
	router   chi.Router
	board    *board.Service
	drafts   *drafts.Service
	metrics  *metrics.Recorder
	gatherer prometheus.Gatherer
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. gatherer backs
// /metrics; a nil gatherer disables the endpoint.
func NewServer(boards *board.Service, texts *drafts.Service, rec *metrics.Recorder, gatherer prometheus.Gatherer, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		board:    boards,
		drafts:   texts,
		metrics:  rec,
		gatherer: gatherer,
		log:      log,
		cfg:      cfg,
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
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", s.handleListTasks)
			r.Post("/", s.handleCreateTask)
			r.Post("/clear-completed", s.handleClearCompleted)
			r.Patch("/{taskID}", s.handleUpdateTask)
			r.Post("/{taskID}/toggle", s.handleToggleTask)
			r.Delete("/{taskID}", s.handleDeleteTask)
		})
		r.Get("/api/board", s.handleBoard)
		r.Get("/api/board/export", s.handleBoardExport)

		r.Get("/api/ruleset", s.handleGetRuleset)
		r.Put("/api/ruleset", s.handlePutRuleset)
		r.Delete("/api/ruleset", s.handleDeleteRuleset)
		r.Post("/api/ruleset/upload", s.handleUploadRuleset)
		r.Get("/api/ruleset/preview", s.handlePreviewRuleset)
		r.Get("/api/ruleset/export", s.handleExportRuleset)

		r.Get("/api/compendium", s.handleGetCompendium)
		r.Put("/api/compendium", s.handlePutCompendium)
		r.Delete("/api/compendium", s.handleDeleteCompendium)
		r.Post("/api/compendium/upload", s.handleUploadCompendium)
		r.Get("/api/compendium/export", s.handleExportCompendium)

		r.Post("/api/transform/outline", s.handleTransformOutline)
		r.Post("/api/transform/segment", s.handleTransformSegment)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
