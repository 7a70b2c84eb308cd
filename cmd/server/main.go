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

	authapp "afs-bridge/internal/application/auth"
	pmapp "afs-bridge/internal/application/payment_method"
	terminalapp "afs-bridge/internal/application/terminal"
	"afs-bridge/internal/infrastructure/afs"
	"afs-bridge/internal/infrastructure/config"
	otelinfra "afs-bridge/internal/infrastructure/observability/otel"
	"afs-bridge/internal/infrastructure/persistence/mysql"
	grpcserver "afs-bridge/internal/presentation/grpc"
	"afs-bridge/internal/presentation/rest"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(ctx, &cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	meterShutdown, err := otelinfra.InitMeter(ctx, &cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize meter: %w", err)
	}

	// ロガーとメトリクスの初期化
	tracer := otelinfra.Tracer(cfg.OpenTelemetry.ServiceName)
	logger := otelinfra.NewLogger(tracer)
	if cfg.Log.Format == "console" {
		logger = otelinfra.NewConsoleLogger(tracer)
	}
	logger = logger.WithLevel(otelinfra.ParseLogLevel(cfg.Log.Level))

	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(flushCtx); err != nil {
			logger.Error(flushCtx, "Failed to shutdown tracer", err, nil)
		}
		if err := meterShutdown(flushCtx); err != nil {
			logger.Error(flushCtx, "Failed to shutdown meter", err, nil)
		}
	}()

	metrics, err := otelinfra.NewMetrics(cfg.OpenTelemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	// データベース接続の初期化
	db, err := mysql.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		logger.Info(ctx, "Database schema ensured", nil)
	}

	// リポジトリの初期化
	paymentMethodRepo := mysql.NewPaymentMethodRepository(db)
	terminalPaymentRepo := mysql.NewTerminalPaymentRepository(db)

	// AFS端末クライアントの生成方法（支払方法ごとに認証情報が異なる）
	gateways := terminalapp.NewAFSGatewayFactory(
		afs.WithHTTPClient(afs.NewHTTPClient(cfg.AFS.Timeout)),
		afs.WithLogger(logger),
		afs.WithMetrics(metrics),
	)

	// アプリケーションサービスの初期化
	terminalService := terminalapp.NewTerminalApplicationService(
		paymentMethodRepo,
		terminalPaymentRepo,
		gateways,
		&cfg.AFS,
		logger,
		metrics,
	)
	paymentMethodService := pmapp.NewPaymentMethodApplicationService(paymentMethodRepo, logger)
	authService := authapp.NewAuthApplicationService(&cfg.JWT, logger)

	router, err := rest.NewRouter(cfg, logger, metrics, db, rest.Services{
		Terminal:      terminalService,
		PaymentMethod: paymentMethodService,
		Auth:          authService,
	})
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}

	grpcSrv, err := grpcserver.NewServer(cfg, logger, metrics, terminalService)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	errCh := make(chan error, 2)

	address := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info(ctx, "REST API server starting", map[string]interface{}{
			"address":     address,
			"environment": cfg.Environment,
		})
		if err := router.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("REST API server error: %w", err)
		}
	}()

	go func() {
		if err := grpcSrv.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info(context.Background(), "Shutting down servers", nil)
	case serveErr = <-errCh:
		logger.Error(context.Background(), "Server stopped unexpectedly", serveErr, nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "Error shutting down REST API server", err, nil)
	}
	if err := grpcSrv.Stop(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "Error shutting down gRPC server", err, nil)
	}

	logger.Info(shutdownCtx, "Servers stopped", nil)
	return serveErr
}
