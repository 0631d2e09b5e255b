// TalentScout - Hiring Assistant Intake Server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ashureev/talentscout/internal/api"
	"github.com/ashureev/talentscout/internal/app"
	"github.com/ashureev/talentscout/internal/config"
	"github.com/ashureev/talentscout/internal/intake"
	"github.com/ashureev/talentscout/internal/metrics"
	"github.com/ashureev/talentscout/internal/middleware"
	"github.com/ashureev/talentscout/internal/sessions"
	"github.com/ashureev/talentscout/internal/ws"
	"github.com/ashureev/talentscout/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "backend", cfg.Backend)

	// Initialize dependencies.
	repo, err := app.OpenRepository(cfg, logger)
	if err != nil {
		slog.Error("Failed to initialize submission backend", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Submission backend health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Submission backend ready", "backend", repo.Name())

	questions, err := app.Questions(cfg)
	if err != nil {
		slog.Error("Failed to load question prompts", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	// Initialize services.
	controller := intake.NewController(app.NewProvider(cfg, logger), repo,
		intake.WithRecorder(recorder),
		intake.WithLogger(logger),
		intake.WithMaxGenerateAttempts(cfg.Provider.MaxAttempts),
	)
	cm := ws.NewConnManager()
	registry := sessions.NewRegistry(questions,
		sessions.WithRecorder(recorder),
		sessions.WithLogger(logger),
		sessions.WithCleanup(cm.Close),
	)

	// Initialize handlers.
	baseHandler := api.NewHandler(registry, controller, repo)
	intakeHandler := api.NewIntakeHandler(baseHandler)
	healthHandler := api.NewHealthHandler(repo)
	origins := middleware.AllowedOrigins(cfg.FrontendURL)
	wsHandler := ws.NewHandler(registry, controller, cm, origins, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(origins))

	// Public routes.
	healthHandler.RegisterHealth(r)
	intakeHandler.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// WebSocket endpoint.
	r.Get("/ws/intake", wsHandler.ServeHTTP)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// No WriteTimeout: generation requests and WebSocket conversations are long-lived.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	// Start session sweeper.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry.StartSweeper(ctx, cfg.SessionTTL, time.Minute)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
