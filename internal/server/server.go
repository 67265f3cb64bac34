// Package server wires the dependency graph and owns the HTTP lifecycle:
// router construction, the route table, and graceful shutdown.
//
// Route table:
//
//	POST   /register       public
//	POST   /login          public
//	GET    /posts          bearer token
//	GET    /posts/{slug}   bearer token
//	POST   /posts          bearer token
//	PUT    /posts/{slug}   bearer token
//	DELETE /posts/{slug}   bearer token
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

	"github.com/sakif/blog-api/internal/auth"
	"github.com/sakif/blog-api/internal/handler"
	"github.com/sakif/blog-api/internal/middleware"
	sqliteRepo "github.com/sakif/blog-api/internal/repository/sqlite"
	"github.com/sakif/blog-api/internal/service"
)

// Config holds the server's runtime configuration.
type Config struct {
	Port       int
	DBPath     string
	JWTSecret  string
	BcryptCost int // 0 means the bcrypt default
}

// Server bundles the router with the resources it owns. The database
// connection is closed during shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, token and password
// services, the two domain services, handlers, and the route table.
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
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	passwords := auth.NewPasswordService()
	if s.config.BcryptCost > 0 {
		passwords = auth.NewPasswordServiceWithCost(s.config.BcryptCost)
	}

	users := sqliteRepo.NewUserRepo(s.db)
	posts := sqliteRepo.NewPostRepo(s.db)

	authService := service.NewAuthService(users, tokens, passwords, s.logger)
	postService := service.NewPostService(posts, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)

	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Post("/login", authHandler.HandleLogin)

	// Every post route sits behind the bearer-token gate; an invalid or
	// missing token is rejected before any handler runs.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens, users))

		r.Get("/posts", postHandler.HandleList)
		r.Get("/posts/{slug}", postHandler.HandleGet)
		r.Post("/posts", postHandler.HandleCreate)
		r.Put("/posts/{slug}", postHandler.HandleUpdate)
		r.Delete("/posts/{slug}", postHandler.HandleDelete)
	})

	return nil
}

// Handler exposes the router, mainly for tests that drive the full stack
// through httptest without binding a real port.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources without serving. Start does this
// itself; Close exists for callers that never reach Start.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves HTTP until SIGINT/SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
