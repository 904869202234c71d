// Package api provides the HTTP API server and handlers for the Swasti application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/swastiapp/swasti-server/internal/identity"
	"github.com/swastiapp/swasti-server/internal/ratelimit"
	"github.com/swastiapp/swasti-server/internal/state"
	"github.com/swastiapp/swasti-server/internal/store"
	"github.com/swastiapp/swasti-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	registry    *state.Registry
	identity    identity.Service
	data        store.Store
	validator   *validation.Validator
	authLimiter *ratelimit.KeyedRateLimiter
	router      *chi.Mux
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(registry *state.Registry, idsvc identity.Service, data store.Store, authLimiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	s := &Server{
		registry:    registry,
		identity:    idsvc,
		data:        data,
		validator:   validation.New(),
		authLimiter: authLimiter,
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware()
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
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public, rate limited per client IP).
		r.Route("/auth", func(r chi.Router) {
			r.With(s.rateLimitAuth).Post("/register", s.handleRegister)
			r.With(s.rateLimitAuth).Post("/login", s.handleLogin)
			r.With(s.rateLimitAuth).Post("/verify-email", s.handleVerifyEmail)
			r.Post("/logout", s.handleLogout)
			r.Get("/google", s.handleGoogleLogin)
			r.Get("/callback", s.handleGoogleCallback)
		})

		// Users.
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/me", s.handleGetCurrentUser)
				r.Patch("/me", s.handleUpdateProfile)
				r.Post("/{id}/follow", s.handleFollowUser)
				r.Delete("/{id}/follow", s.handleUnfollowUser)
			})
			r.With(s.withSession).Get("/{id}", s.handleGetUser)
		})

		// Tips.
		r.Route("/tips", func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/", s.handleListTips)
			r.Get("/feed", s.handleFeedTips)
			r.Get("/popular", s.handlePopularTips)
			r.Get("/{id}", s.handleGetTip)
			r.Get("/{id}/comments", s.handleListComments)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.handleCreateTip)
				r.Get("/saved", s.handleSavedTips)
				r.Post("/{id}/save", s.handleSaveTip)
				r.Delete("/{id}/save", s.handleUnsaveTip)
				r.Post("/{id}/like", s.handleLikeTip)
				r.Delete("/{id}/like", s.handleUnlikeTip)
				r.Post("/{id}/comments", s.handleAddComment)
			})
		})

		// Categories (static).
		r.Get("/categories", s.handleListCategories)
	})
}
