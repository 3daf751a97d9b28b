// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command portal runs the community portal API server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/empoweringtalks/portal-go/internal/config"
	"github.com/empoweringtalks/portal-go/internal/handler"
	"github.com/empoweringtalks/portal-go/internal/logging"
	"github.com/empoweringtalks/portal-go/internal/middleware"
	"github.com/empoweringtalks/portal-go/internal/scheduler"
	"github.com/empoweringtalks/portal-go/internal/service"
	"github.com/empoweringtalks/portal-go/internal/session"
	"github.com/empoweringtalks/portal-go/internal/storage"
	"github.com/empoweringtalks/portal-go/internal/store"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("portal %s (%s)\n", appVersion, appGitCommit)
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to mirror WARN and ERROR logs into the audit log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	queries := store.New(db)

	if cfg.SeedEnabled() {
		if err := store.Seed(ctx, queries, store.SeedParams{
			Email:    cfg.FounderEmail,
			Password: cfg.FounderPassword,
			FullName: cfg.FounderName,
		}); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())

	eventService := service.NewEventService(db)
	projectService := service.NewProjectService(db)
	if err := projectService.Load(ctx); err != nil {
		return fmt.Errorf("loading project feed: %w", err)
	}

	uploads, err := storage.NewLocal(cfg.UploadsDir, "/uploads", cfg.MaxUploadBytes)
	if err != nil {
		return fmt.Errorf("initializing uploads: %w", err)
	}

	sched := scheduler.New(db, logger, time.Duration(cfg.EventRetentionDays)*24*time.Hour)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	apiRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)

	h := handler.NewHandler(db, sessionManager, projectService, eventService, uploads, loginProtection)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))

	// Health probes stay outside rate limiting and CSRF
	r.Get("/health", h.Health)
	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware())
		r.Use(csrfMiddleware)

		r.Get("/status", h.Status)

		// Public auth endpoints
		r.With(loginProtection.Middleware()).Post("/auth/login", h.Login)
		r.Post("/auth/signup", h.Signup)
		r.Post("/auth/logout", h.Logout)
		r.Post("/auth/forgot-password", h.ForgotPassword)
		r.Post("/auth/reset-password", h.ResetPassword)

		// Authenticated portal surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(sessionManager))
			r.Use(middleware.LoadUser(sessionManager, db))

			r.Get("/me", h.Me)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)

			r.Get("/articles", h.ListArticles)
			r.Post("/articles", h.CreateArticle)
			r.Delete("/articles/{id}", h.DeleteArticle)

			r.Get("/announcements", h.ListAnnouncements)
			r.Get("/webinars", h.ListWebinars)
			r.Get("/opportunities", h.ListOpportunities)

			r.Get("/projects", h.ListApprovedProjects)
			r.Post("/projects", h.SubmitProject)
			r.Post("/projects/upload", h.UploadProjectFile)

			// Founder-only moderation and publishing
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireFounder())

				r.Post("/announcements", h.CreateAnnouncement)
				r.Delete("/announcements/{id}", h.DeleteAnnouncement)
				r.Post("/webinars", h.CreateWebinar)
				r.Delete("/webinars/{id}", h.DeleteWebinar)
				r.Post("/opportunities", h.CreateOpportunity)
				r.Delete("/opportunities/{id}", h.DeleteOpportunity)

				r.Get("/projects/pending", h.ListPendingProjects)
				r.Post("/projects/{id}/decision", h.DecideProject)
				r.Delete("/projects/{id}", h.DeleteProject)
			})
		})
	})

	// Serve uploaded files with path containment checks
	absUploads, err := filepath.Abs(uploads.Dir())
	if err != nil {
		return fmt.Errorf("resolving uploads directory: %w", err)
	}
	r.Get("/uploads/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		absFile, err := filepath.Abs(filepath.Join(absUploads, name))
		if err != nil {
			http.NotFound(w, req)
			return
		}
		rel, err := filepath.Rel(absUploads, absFile)
		if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.ServeFile(w, req, absFile)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // allow slow uploads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
