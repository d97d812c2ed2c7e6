// Package api provides the HTTP API server and handlers for the ReelView backend.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/reelviewapp/reelview-server/internal/http/response"
	"github.com/reelviewapp/reelview-server/internal/movies"
	"github.com/reelviewapp/reelview-server/internal/validation"
)

// Version is reported by the health endpoint and the OpenAPI document.
const Version = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	service   *movies.Service
	router    *chi.Mux
	api       huma.API
	validator *validation.Validator
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(service *movies.Service, logger *slog.Logger) *Server {
	s := &Server{
		service:   service,
		router:    chi.NewRouter(),
		validator: validation.New(),
		logger:    logger,
	}

	s.setupMiddleware()

	config := huma.DefaultConfig("ReelView API", Version)
	config.Info.Description = "Backend-for-frontend for the ReelView mobile app"
	s.api = humachi.New(s.router, config)

	RegisterErrorHandler()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// Mobile clients call from app webviews and local dev tooling.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Client-Id"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check stays outside the OpenAPI surface.
	s.router.Get("/health", s.handleHealthCheck)

	s.registerMovieRoutes()
	s.registerMetricsRoutes()
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status":  "healthy",
		"version": Version,
	}, s.logger)
}

// clientKey identifies a client for per-client search debouncing. Clients
// that do not send the header share one bucket.
func clientKey(header string) string {
	if header == "" {
		return "anonymous"
	}
	return header
}
