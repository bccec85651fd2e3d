package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/config"
	"github.com/draftea/saga-orchestrator/orchestrator-service/handlers"
	"github.com/draftea/saga-orchestrator/shared/logger"
	"github.com/draftea/saga-orchestrator/shared/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logg.Sync() //nolint:errcheck

	logg.Info("starting service", zap.String("port", cfg.Port))

	// Initialize dependencies
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := config.BuildDependencies(ctx, cfg, logg)
	if err != nil {
		logg.Fatal("failed to build dependencies", zap.Error(err))
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logg.Error("error closing dependencies", zap.Error(err))
		}
	}()

	// Start event subscriber
	if err := deps.EventSubscriber.Start(ctx); err != nil {
		logg.Fatal("failed to start event subscriber", zap.Error(err))
	}

	if deps.ReconciliationScheduler != nil {
		if err := deps.ReconciliationScheduler.Start(ctx); err != nil {
			logg.Fatal("failed to start reconciliation scheduler", zap.Error(err))
		}
	}

	// Setup and start HTTP server
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error("server forced to shutdown", zap.Error(err))
	}

	if err := deps.EventSubscriber.Stop(shutdownCtx); err != nil {
		logg.Error("failed to stop event subscriber", zap.Error(err))
	}

	if deps.ReconciliationScheduler != nil {
		deps.ReconciliationScheduler.Stop()
	}

	logg.Info("service stopped")
}

func setupRouter(deps *config.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// Telemetry middleware (inject telemetry into context)
	if deps.Telemetry != nil {
		r.Use(telemetry.Middleware(deps.Telemetry))
	}

	// Metrics endpoint for Prometheus
	r.Handle("/metrics", handlers.NewMetricsHandler())

	deps.OrchestratorHandlers.RegisterRoutes(r)

	return r
}
