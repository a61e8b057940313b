package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ozsensors/bom-bridge/internal/bom"
	"github.com/ozsensors/bom-bridge/internal/config"
	httphandler "github.com/ozsensors/bom-bridge/internal/http"
	"github.com/ozsensors/bom-bridge/internal/lifecycle"
	"github.com/ozsensors/bom-bridge/internal/observability"
	"github.com/ozsensors/bom-bridge/internal/service"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	client := bom.NewClient(cfg.BureauBaseURL, cfg.BureauUserAgent, cfg.BureauTimeout)
	registry := service.NewRegistry(client, logger, cfg.Locations)
	logger.Info("registry built", zap.Int("locations", len(registry.Entries())))

	pollCtx, pollCancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer pollCancel()
	poller := service.NewPoller(registry, cfg.UpdateInterval, logger)
	go poller.Run(pollCtx)

	healthConfig := &httphandler.HealthConfig{
		OverloadWindow:       cfg.OverloadWindow,
		OverloadThresholdPct: cfg.OverloadThresholdPct,
		RateLimitRPS:         cfg.RateLimitRPS,
		DegradedWindow:       cfg.DegradedWindow,
		DegradedErrorPct:     cfg.DegradedErrorPct,
		StartTime:            time.Now(),
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	handler := httphandler.NewHandler(registry, healthConfig, logger)
	router := httphandler.NewRouter(handler, logger, limiter, cfg.RequestTimeout)

	observability.RegisterRateLimitGauges(cfg.OverloadWindow)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", ":"+cfg.ServerPort),
			zap.Duration("update_interval", cfg.UpdateInterval))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-pollCtx.Done()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, 100*time.Millisecond); err != nil {
		logger.Warn("in-flight requests not completed",
			zap.Error(err),
			zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
