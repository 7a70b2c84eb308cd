package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	authapp "afs-bridge/internal/application/auth"
	pmapp "afs-bridge/internal/application/payment_method"
	terminalapp "afs-bridge/internal/application/terminal"
	"afs-bridge/internal/infrastructure/config"
	otelinfra "afs-bridge/internal/infrastructure/observability/otel"
	"afs-bridge/internal/presentation/rest/handler"
	restmiddleware "afs-bridge/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// HealthChecker 依存先の疎通確認
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Services ルーターが公開するアプリケーションサービス
type Services struct {
	Terminal      *terminalapp.TerminalApplicationService
	PaymentMethod *pmapp.PaymentMethodApplicationService
	Auth          *authapp.AuthApplicationService
}

// Router REST APIルーター
type Router struct {
	echo *echo.Echo
	cfg  *config.Config
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	health HealthChecker,
	services Services,
) (*Router, error) {
	if services.Terminal == nil || services.PaymentMethod == nil || services.Auth == nil {
		return nil, fmt.Errorf("all application services are required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// エラーはErrorHandlerMiddlewareでレスポンス化済みのため、ここでは何もしない
	e.HTTPErrorHandler = func(err error, c echo.Context) {}

	setupMiddleware(e, logger, metrics)

	terminalHandler := handler.NewTerminalHandler(services.Terminal)
	paymentMethodHandler := handler.NewPaymentMethodHandler(services.PaymentMethod)
	authHandler := handler.NewAuthHandler(services.Auth)

	setupRoutes(e, cfg, logger, health, terminalHandler, paymentMethodHandler, authHandler)

	SetupSwagger(e)

	return &Router{
		echo: e,
		cfg:  cfg,
	}, nil
}

// setupMiddleware ミドルウェアを設定
// MetricsはErrorHandlerの外側に置き、書き込まれたステータスで分類する
func setupMiddleware(e *echo.Echo, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			restmiddleware.APIKeyHeader,
		},
	}))

	e.Use(middleware.RequestID())
	e.Use(restmiddleware.SecurityHeadersMiddleware())
	e.Use(restmiddleware.TracingMiddleware())
	e.Use(restmiddleware.LoggingMiddleware(logger))
	e.Use(restmiddleware.MetricsMiddleware(metrics))
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func setupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	logger *otelinfra.Logger,
	health HealthChecker,
	terminalHandler *handler.TerminalHandler,
	paymentMethodHandler *handler.PaymentMethodHandler,
	authHandler *handler.AuthHandler,
) {
	api := e.Group("/api/v1")

	// POS向け端末決済API（JWT認証）
	terminal := api.Group("/terminal/afs", restmiddleware.AuthMiddleware(&cfg.JWT, logger))
	terminal.POST("/payments", terminalHandler.MakePayment)
	terminal.POST("/payments/status", terminalHandler.FetchPaymentStatus)
	terminal.POST("/payments/cancel", terminalHandler.CancelPayment)
	terminal.GET("/payments/:payment_id", terminalHandler.GetPayment)

	// 管理API（APIキー認証）
	if cfg.AdminAPI.Enabled {
		admin := api.Group("/admin", restmiddleware.APIKeyMiddleware(&cfg.AdminAPI, logger))
		admin.PUT("/payment-methods/:id", paymentMethodHandler.UpsertPaymentMethod)
		admin.GET("/payment-methods/:id", paymentMethodHandler.GetPaymentMethod)
		admin.POST("/auth/token", authHandler.GenerateToken)
	}

	e.GET("/health", func(c echo.Context) error {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			if err := health.HealthCheck(ctx); err != nil {
				logger.Warn(ctx, "Health check failed", map[string]interface{}{
					"error": err.Error(),
				})
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Handler HTTPハンドラーを返す
func (r *Router) Handler() http.Handler {
	return r.echo
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	r.echo.Server.ReadTimeout = r.cfg.Server.ReadTimeout
	r.echo.Server.WriteTimeout = r.cfg.Server.WriteTimeout
	r.echo.Server.IdleTimeout = r.cfg.Server.IdleTimeout
	return r.echo.Start(address)
}

// Shutdown 処理中のリクエストを待ってサーバーを停止
func (r *Router) Shutdown(ctx context.Context) error {
	return r.echo.Shutdown(ctx)
}
