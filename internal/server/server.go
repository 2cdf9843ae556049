// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "start the server")
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/restaurant-directory/internal/auth"
	"github.com/sakif/restaurant-directory/internal/handler"
	"github.com/sakif/restaurant-directory/internal/middleware"
	sqliteRepo "github.com/sakif/restaurant-directory/internal/repository/sqlite"
	"github.com/sakif/restaurant-directory/internal/service"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from files/env vars in one place (main.go)
type Config struct {
	Port       int
	DBPath     string        // path to the SQLite database file (":memory:" in tests)
	JWTSecret  string        // HMAC key for session tokens — REQUIRED
	BcryptCost int           // 0 → auth.DefaultBcryptCost
	TokenTTL   time.Duration // 0 → auth.DefaultTokenTTL
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection (db). When the server shuts down,
// we must close it to flush the WAL and release the file lock.
// This is handled in Start() during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config.
//
// DEPENDENCY INJECTION & WIRING:
// This is where the entire dependency chain is assembled:
//  1. Open the database (sqlite.New) — it implements both repository interfaces
//  2. Create the auth primitives (TokenService, PasswordService)
//  3. Create the service layer (AuthService, RestaurantService)
//  4. Create the handlers and wire them to routes
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete sqlite.DB)
// - Handlers get services (not repositories or the DB)
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with
// the sqlite driver package.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /signup                  → create an account            (public)
//	POST   /login                   → authenticate, set jwt cookie (public)
//	GET    /logout                  → clear jwt cookie             (public)
//	GET    /api/me                  → current user profile         (ENFORCING)
//	GET    /api/restaurants         → paginated listing            (observing)
//	GET    /api/restaurants/search  → filter by cuisine/borough    (observing)
//	GET    /api/restaurants/{id}    → single record                (observing)
//	POST   /api/restaurants         → create                       (ENFORCING)
//	PUT    /api/restaurants/{id}    → merge-update                 (ENFORCING)
//	DELETE /api/restaurants/{id}    → delete                       (ENFORCING)
//
// TWO AUTH MODES:
// auth.CurrentUser runs globally — it never denies, it just attaches the
// logged-in user to the context when a valid cookie is present, so any
// handler can personalise output. auth.RequireAuth is layered ONLY onto
// the mutating routes (and /api/me) via r.With(); those reject outright
// with 401 when the cookie is missing or bad.
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
// 5. CurrentUser — resolves the session cookie (never denies)
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	// s.db satisfies repository.RestaurantRepository directly and exposes
	// repository.UserRepository via Users() — one connection, two interfaces.
	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	restaurantService := service.NewRestaurantService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, tokens, s.logger)
	restaurantHandler := handler.NewRestaurantHandler(restaurantService, s.logger)

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	// AuthService satisfies auth.UserResolver (GetUserByID)
	s.router.Use(auth.CurrentUser(tokens, authService))

	// === Session Routes ===
	s.router.Post("/signup", authHandler.HandleSignup)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Get("/logout", authHandler.HandleLogout)

	// === API Routes ===
	requireAuth := auth.RequireAuth(tokens)

	s.router.Route("/api", func(r chi.Router) {
		r.With(requireAuth).Get("/me", authHandler.HandleMe)

		// Reads are open; search must be registered before {id} would
		// swallow it — chi routes static segments first, but keeping them
		// grouped this way makes the intent obvious.
		r.Get("/restaurants", restaurantHandler.HandleList)
		r.Get("/restaurants/search", restaurantHandler.HandleSearch)
		r.Get("/restaurants/{id}", restaurantHandler.HandleGetByID)

		// Writes require a valid session.
		r.With(requireAuth).Post("/restaurants", restaurantHandler.HandleCreate)
		r.With(requireAuth).Put("/restaurants/{id}", restaurantHandler.HandleUpdate)
		r.With(requireAuth).Delete("/restaurants/{id}", restaurantHandler.HandleDelete)
	})

	return nil
}

// Handler exposes the fully wired router.
// Tests mount this on httptest.Server instead of calling Start().
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources (the database connection).
// Start() does this itself; call Close() directly only when the server was
// built but never started — e.g. in tests using Handler().
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// If we skip step 3, the database file might be left in an inconsistent state.
// The `defer s.db.Close()` ensures this happens even if something panics.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
