// Package server wires the router, middleware, and handlers together and
// owns the process lifecycle: it opens the database, serves HTTP, and shuts
// both down gracefully on SIGINT/SIGTERM.
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
	"github.com/go-chi/cors"

	"github.com/ymatsu/zange-board/internal/auth"
	"github.com/ymatsu/zange-board/internal/config"
	"github.com/ymatsu/zange-board/internal/handler"
	"github.com/ymatsu/zange-board/internal/middleware"
	sqliteRepo "github.com/ymatsu/zange-board/internal/repository/sqlite"
	"github.com/ymatsu/zange-board/internal/service"
	"github.com/ymatsu/zange-board/internal/session"
)

// Server holds the router and the resources it owns. The database connection
// belongs to the server and is closed during shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database → repositories →
// services → handlers → routes. Each layer only sees the one below it;
// handlers never touch the database directly.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
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
	s.router.Use(middleware.NoStore)

	// Cookie-based auth needs AllowCredentials; the browser won't send the
	// session cookie cross-origin without it.
	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-Admin-Key"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	sessions, err := session.NewManager(s.config.SessionSecret, s.config.SecureCookies)
	if err != nil {
		return fmt.Errorf("creating session manager: %w", err)
	}

	accountService := service.NewAccountService(s.db.Users(), auth.NewPasswordService(), s.logger)
	postService := service.NewPostService(s.db.Posts(), s.logger)
	commentService := service.NewCommentService(s.db.Comments(), s.db.Posts(), s.logger)

	authHandler := handler.NewAuthHandler(accountService, sessions, s.logger)
	postHandler := handler.NewPostHandler(postService, accountService, sessions, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, accountService, sessions, s.logger)
	healthHandler := handler.NewHealthHandler()
	adminHandler := handler.NewAdminHandler(accountService, s.db, s.config.AdminKey, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.Get("/me", authHandler.HandleMe)

		r.Get("/posts", postHandler.HandleList)
		r.Post("/posts", postHandler.HandleCreate)

		r.Get("/comments", commentHandler.HandleList)
		r.Post("/comments", commentHandler.HandleCreate)

		r.Get("/health", healthHandler.HandleHealth)
		r.Get("/ping", healthHandler.HandlePing)
	})

	s.router.Route("/admin", func(r chi.Router) {
		r.Use(adminHandler.RequireAdmin)
		r.Get("/dbcheck", adminHandler.HandleDBCheck)
		r.Post("/reset-password", adminHandler.HandleResetPassword)
	})

	// The frontend is a static bundle. Serving it is optional — API-only
	// deployments leave StaticDir unset.
	if s.config.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(s.config.StaticDir))
		s.router.Handle("/*", fileServer)
	}

	return nil
}

// Handler exposes the assembled router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until SIGINT/SIGTERM, then drains in-flight requests
// (30s timeout) and closes the database.
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
			slog.String("version", handler.Version),
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
