package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"afs-bridge/internal/domain/payment_method"
	"afs-bridge/internal/domain/terminal_payment"
	otelinfra "afs-bridge/internal/infrastructure/observability/otel"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// domainError ドメインエラーとHTTPレスポンスの対応
type domainError struct {
	err    error
	status int
	code   string
}

var domainErrors = []domainError{
	{terminal_payment.ErrRefundNotSupported, http.StatusBadRequest, "refund_not_supported"},
	{terminal_payment.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{terminal_payment.ErrInvalidPaymentID, http.StatusBadRequest, "invalid_payment_id"},
	{terminal_payment.ErrTerminalPaymentNotFound, http.StatusNotFound, "terminal_payment_not_found"},
	{terminal_payment.ErrTransactionInProgress, http.StatusConflict, "transaction_in_progress"},
	{payment_method.ErrPaymentMethodNotFound, http.StatusNotFound, "payment_method_not_found"},
	{payment_method.ErrInvalidPaymentMethod, http.StatusBadRequest, "invalid_payment_method"},
	{payment_method.ErrUnsupportedTerminal, http.StatusBadRequest, "unsupported_terminal"},
	{payment_method.ErrTerminalNotConfigured, http.StatusUnprocessableEntity, "terminal_not_configured"},
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}
			return handleError(c, err, logger)
		}
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			logger.Warn(ctx, "Domain error", map[string]interface{}{
				"code":  de.code,
				"error": err.Error(),
			})
			return c.JSON(de.status, ErrorResponse{
				Error:   de.code,
				Message: de.err.Error(),
				Code:    de.code,
			})
		}
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message, ok := httpErr.Message.(string)
		if !ok {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
