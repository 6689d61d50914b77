// Package web provides the HTTP server and handlers for the spot
// directory: public browsing endpoints, the admin CRUD surface, and the
// CSV import/export endpoints.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hokuro/spotd/internal/cache"
	"github.com/hokuro/spotd/internal/config"
	"github.com/hokuro/spotd/internal/importer"
	"github.com/hokuro/spotd/internal/spot"
	"github.com/hokuro/spotd/internal/web/middleware"
)

// Server is the HTTP server for the spot directory.
type Server struct {
	repo      spot.Repository
	importer  *importer.Importer
	deduper   *importer.Deduper
	listCache *cache.Listing
	cfg       *config.Config
	router    *chi.Mux
	server    *http.Server
}

// NewServer creates a Server over the given repository.
func NewServer(repo spot.Repository, cfg *config.Config) *Server {
	policy := importer.Policy{
		ExactNameRadiusM: cfg.Import.ExactNameRadiusM,
		ProximityRadiusM: cfg.Import.ProximityRadiusM,
		MaxCandidates:    cfg.Import.MaxCandidates,
	}
	s := &Server{
		repo:      repo,
		importer:  importer.New(repo, policy),
		deduper:   importer.NewDeduper(repo, policy),
		listCache: cache.NewListing(cfg.Cache.TTL),
		cfg:       cfg,
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := middleware.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.router.Use(limiter.Middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Public browsing
		r.Get("/spots", s.handleListSpots)
		r.Get("/spots/{spotID}", s.handleGetSpot)

		// Admin surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(&s.cfg.Security))

			r.Post("/spots", s.handleCreateSpot)
			r.Put("/spots/{spotID}", s.handleUpdateSpot)
			r.Delete("/spots/{spotID}", s.handleDeleteSpot)

			r.Post("/import", s.handleImport)
			r.Get("/import/template", s.handleImportTemplate)
			r.Get("/export", s.handleExport)
		})
	})
}

// securityHeaders sets baseline hardening headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening on the configured address. It blocks until the
// server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
