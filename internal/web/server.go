// Package web provides the HTTP server and handlers for the workout program.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/liftlog/internal/config"
	"github.com/JonMunkholm/liftlog/internal/core"
	webmw "github.com/JonMunkholm/liftlog/internal/web/middleware"
)

// Server is the HTTP server for the workout program.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	metrics http.Handler

	limiter       *rateLimiter
	importLimiter *rateLimiter
}

// NewServer creates a new Server instance. A nil metrics handler serves the
// default Prometheus registry.
func NewServer(service *core.Service, cfg *config.Config, metrics http.Handler) *Server {
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
		metrics: metrics,
	}
	if cfg.Rate.Enabled {
		s.limiter = newRateLimiter(cfg.Rate.RequestsPerMinute, time.Minute)
		s.importLimiter = newRateLimiter(cfg.Rate.ImportLimit, time.Minute)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(requestCaller)

	if s.limiter != nil {
		s.router.Use(s.limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metrics)

	// Pages
	s.router.Get("/", s.handleSummaryPage)
	s.router.Get("/summary", s.handleSummaryPage)

	s.router.Route("/api", func(r chi.Router) {
		// Documents
		r.Get("/export", s.handleExport)
		r.Get("/export/pretty", s.handleExportPretty)
		r.Post("/detect", s.handleDetect)
		r.With(s.limitImports).Post("/import", s.handleImport)

		// Program reads
		r.Get("/program", s.handleProgram)
		r.Get("/status", s.handleStatus)

		// Summaries
		r.Get("/summary/days", s.handleDaySummaries)
		r.Get("/summary/days/{dayID}", s.handleDaySummary)
		r.Get("/summary/aggregate", s.handleAggregate)
		r.Get("/summary/groups", s.handleGroupBreakdown)

		// Workout groups
		r.Get("/workout-groups", s.handleListWorkoutGroups)
		r.Post("/workout-groups", s.handleCreateWorkoutGroup)
		r.Get("/workout-groups/{id}", s.handleGetWorkoutGroup)
		r.Put("/workout-groups/{id}", s.handleUpdateWorkoutGroup)
		r.Delete("/workout-groups/{id}", s.handleDeleteWorkoutGroup)

		// Exercises
		r.Get("/exercises", s.handleListExercises)
		r.Post("/exercises", s.handleCreateExercise)
		r.Get("/exercises/{id}", s.handleGetExercise)
		r.Put("/exercises/{id}", s.handleUpdateExercise)
		r.Delete("/exercises/{id}", s.handleDeleteExercise)

		// Days, their tags and their sets
		r.Get("/days", s.handleListDays)
		r.Post("/days", s.handleCreateDay)
		r.Get("/days/{id}", s.handleGetDay)
		r.Put("/days/{id}", s.handleUpdateDay)
		r.Delete("/days/{id}", s.handleDeleteDay)
		r.Post("/days/{id}/move", s.handleMoveDay)
		r.Get("/days/{id}/workout-groups", s.handleDayWorkoutGroups)
		r.Post("/days/{id}/workout-groups", s.handleTagDay)
		r.Delete("/days/{id}/workout-groups/{groupID}", s.handleUntagDay)
		r.Get("/days/{id}/sets", s.handleSetsByDay)
		r.Post("/days/{id}/sets", s.handleAddSet)
		r.Post("/days/{id}/exercises/{exerciseID}/move", s.handleMoveExercise)

		// Sets
		r.Get("/sets/{id}", s.handleGetSet)
		r.Put("/sets/{id}", s.handleUpdateSet)
		r.Delete("/sets/{id}", s.handleDeleteSet)

		// Reset
		r.Post("/reset/program", s.handleResetProgram)

		// Audit log
		r.Get("/audit-log", s.handleAuditLog)

		// Backups
		r.Get("/backups", s.handleListBackups)
		r.Post("/backup", s.handleBackup)
		r.With(s.limitImports).Post("/backup/restore", s.handleRestore)
	})
}

// limitImports applies the stricter import rate limit when rate limiting is on.
func (s *Server) limitImports(next http.Handler) http.Handler {
	if s.importLimiter == nil {
		return next
	}
	return s.importLimiter.middleware(next)
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// Inline styles only; the summary page ships no scripts.
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'none'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
