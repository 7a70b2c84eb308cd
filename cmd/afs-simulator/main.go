package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"afs-bridge/internal/infrastructure/afs/simulator"
	"afs-bridge/internal/infrastructure/config"
	otelinfra "afs-bridge/internal/infrastructure/observability/otel"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadSimulator()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer := otelinfra.Tracer("afs-simulator")
	logger := otelinfra.NewLogger(tracer)
	if cfg.Log.Format == "console" {
		logger = otelinfra.NewConsoleLogger(tracer)
	}
	logger = logger.WithLevel(otelinfra.ParseLogLevel(cfg.Log.Level))

	sim := simulator.New(simulator.Options{
		SaleOutcome:  simulator.SaleOutcome(cfg.SaleOutcome),
		ApproveAfter: cfg.ApproveAfter,
		SecureKey:    cfg.SecureKey,
	}, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	sim.Register(e)

	address := fmt.Sprintf(":%d", cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "AFS simulator starting", map[string]interface{}{
			"address":       address,
			"sale_outcome":  cfg.SaleOutcome,
			"approve_after": cfg.ApproveAfter,
		})
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		logger.Error(context.Background(), "AFS simulator stopped unexpectedly", serveErr, nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "Error shutting down AFS simulator", err, nil)
	}
	logger.Info(shutdownCtx, "AFS simulator stopped", nil)
	return serveErr
}
