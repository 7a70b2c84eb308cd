package handler

import (
	"net/http"

	terminalapp "afs-bridge/internal/application/terminal"
	restmiddleware "afs-bridge/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
)

// TerminalHandler AFS端末決済ハンドラー
type TerminalHandler struct {
	terminalService *terminalapp.TerminalApplicationService
}

// NewTerminalHandler 新しいTerminalHandlerを作成
func NewTerminalHandler(terminalService *terminalapp.TerminalApplicationService) *TerminalHandler {
	return &TerminalHandler{
		terminalService: terminalService,
	}
}

// MakePayment 決済開始ハンドラー
// @Summary 端末に決済を要求
// @Description 支払行の金額を端末に送り、承認されれば success、未確定なら waiting を返します
// @Tags terminal
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body MakePaymentRequest true "決済開始リクエスト"
// @Success 200 {object} TerminalResultResponse "端末の応答"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 404 {object} ErrorResponse "支払方法が存在しない"
// @Failure 409 {object} ErrorResponse "同じ支払行が処理中"
// @Router /terminal/afs/payments [post]
func (h *TerminalHandler) MakePayment(c echo.Context) error {
	var reqBody MakePaymentRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.PaymentMethodID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "payment_method_id is required")
	}

	resp, err := h.terminalService.MakePaymentRequest(c.Request().Context(), &terminalapp.MakePaymentRequest{
		PaymentMethodID: reqBody.PaymentMethodID,
		PaymentID:       reqBody.PaymentID,
		Amount:          reqBody.Amount,
		Currency:        reqBody.Currency,
		OrderReference:  reqBody.OrderReference,
		OperatorID:      operatorID(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, TerminalResultResponse{
		Status:           resp.Status,
		Message:          resp.Message,
		LineUUID:         resp.LineUUID,
		AFSTransactionID: resp.AFSTransactionID,
		Response:         resp.Response,
	})
}

// FetchPaymentStatus 決済状態の照会ハンドラー
// @Summary 端末の決済状態を照会
// @Description 承認済みなら success、それ以外は通信エラーも含めて polling を返します
// @Tags terminal
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body FetchPaymentStatusRequest true "照会リクエスト"
// @Success 200 {object} TerminalResultResponse "端末の応答"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 404 {object} ErrorResponse "支払方法が存在しない"
// @Router /terminal/afs/payments/status [post]
func (h *TerminalHandler) FetchPaymentStatus(c echo.Context) error {
	var reqBody FetchPaymentStatusRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.PaymentMethodID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "payment_method_id is required")
	}

	resp, err := h.terminalService.FetchPaymentStatus(c.Request().Context(), &terminalapp.FetchPaymentStatusRequest{
		PaymentMethodID:  reqBody.PaymentMethodID,
		AFSTransactionID: reqBody.AFSTransactionID,
		LineUUID:         reqBody.LineUUID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, TerminalResultResponse{
		Status:   resp.Status,
		Message:  resp.Message,
		LineUUID: resp.LineUUID,
		Response: resp.Response,
	})
}

// CancelPayment 取消ハンドラー
// @Summary 端末の操作を取消
// @Description 端末で進行中の操作を取り消します。受理されれば cancelled を返します
// @Tags terminal
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CancelPaymentRequest true "取消リクエスト"
// @Success 200 {object} TerminalResultResponse "端末の応答"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 404 {object} ErrorResponse "支払方法が存在しない"
// @Router /terminal/afs/payments/cancel [post]
func (h *TerminalHandler) CancelPayment(c echo.Context) error {
	var reqBody CancelPaymentRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.PaymentMethodID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "payment_method_id is required")
	}

	resp, err := h.terminalService.CancelPaymentRequest(c.Request().Context(), &terminalapp.CancelPaymentRequest{
		PaymentMethodID:  reqBody.PaymentMethodID,
		AFSTransactionID: reqBody.AFSTransactionID,
		LineUUID:         reqBody.LineUUID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, TerminalResultResponse{
		Status:   resp.Status,
		Message:  resp.Message,
		LineUUID: resp.LineUUID,
		Response: resp.Response,
	})
}

// GetPayment 保存済み端末決済の取得ハンドラー
// @Summary 端末決済を取得
// @Description 支払行IDで保存済みの端末決済（afs_transaction_id を含む）を取得します
// @Tags terminal
// @Produce json
// @Security Bearer
// @Param payment_id path string true "支払行ID"
// @Success 200 {object} TerminalPaymentResponse "取得成功"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 404 {object} ErrorResponse "見つからない"
// @Router /terminal/afs/payments/{payment_id} [get]
func (h *TerminalHandler) GetPayment(c echo.Context) error {
	paymentID := c.Param("payment_id")
	if paymentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "payment_id is required")
	}

	resp, err := h.terminalService.GetTerminalPayment(c.Request().Context(), paymentID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, TerminalPaymentResponse{
		PaymentID:        resp.PaymentID,
		PaymentMethodID:  resp.PaymentMethodID,
		OrderReference:   resp.OrderReference,
		Amount:           resp.Amount,
		Currency:         resp.Currency,
		AFSTransactionID: resp.AFSTransactionID,
		Status:           resp.Status,
		LastResponse:     resp.LastResponse,
		OperatorID:       resp.OperatorID,
		CreatedAt:        resp.CreatedAt,
		UpdatedAt:        resp.UpdatedAt,
	})
}

// operatorID 認証ミドルウェアが設定したオペレーターIDを取得
func operatorID(c echo.Context) string {
	id, _ := c.Get(restmiddleware.OperatorIDKey).(string)
	return id
}
