package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"neo-platform/internal/config"
	"neo-platform/internal/handlers"
	"neo-platform/internal/repository"
	"neo-platform/internal/services"
	"neo-platform/pkg/database"
	"neo-platform/pkg/logging"
	"neo-platform/pkg/metrics"
)

const (
	version = "1.0.0"

	// clients idle this long lose their rate limit bucket
	limiterIdleTTL = 10 * time.Minute
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := errors.Join(cfg.Validate(), cfg.ValidateDatabase(), cfg.ValidateServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("neo-api", version, cfg.LogLevel())

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting NEO platform API server", logging.Fields{
		"version":     version,
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"db_host":     cfg.Database.Host,
		"db_name":     cfg.Database.Database,
	})

	metricsCollector := metrics.NewCollector("neo_platform", nil)

	db, err := database.NewPostgresDB(cfg.Database.PostgresConfig(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	approachRepo := repository.NewApproachRepository(db, logger, metricsCollector)
	approachService := services.NewApproachService(approachRepo, logger, metricsCollector)
	approachHandler := handlers.NewApproachHandler(approachService, logger, metricsCollector, cfg.Export.DefaultLimit, cfg.Export.MaxLimit)

	routerOpts := handlers.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        promhttp.Handler(),
	}
	if cfg.Server.RateLimit > 0 {
		limiter := handlers.NewIPRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
		sweepCtx, stopSweep := context.WithCancel(ctx)
		defer stopSweep()
		go limiter.Run(sweepCtx, time.Minute, limiterIdleTTL)
		routerOpts.Limiter = limiter
	}
	router := handlers.NewRouter(approachHandler, routerOpts)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
