package handler

import (
	"net/http"

	pmapp "afs-bridge/internal/application/payment_method"

	"github.com/labstack/echo/v4"
)

// PaymentMethodHandler 支払方法の管理ハンドラー
type PaymentMethodHandler struct {
	paymentMethodService *pmapp.PaymentMethodApplicationService
}

// NewPaymentMethodHandler 新しいPaymentMethodHandlerを作成
func NewPaymentMethodHandler(paymentMethodService *pmapp.PaymentMethodApplicationService) *PaymentMethodHandler {
	return &PaymentMethodHandler{
		paymentMethodService: paymentMethodService,
	}
}

// UpsertPaymentMethod 支払方法の登録・更新ハンドラー（管理API用）
// @Summary 支払方法を登録・更新（管理API）
// @Description AFS端末の認証情報を設定します。afs_secure_key は書き込み専用です
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "支払方法ID" example(afs-counter-1)
// @Param X-API-Key header string true "APIキー"
// @Param request body UpsertPaymentMethodRequest true "支払方法"
// @Success 200 {object} PaymentMethodResponse "保存成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /admin/payment-methods/{id} [put]
func (h *PaymentMethodHandler) UpsertPaymentMethod(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	var reqBody UpsertPaymentMethodRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.paymentMethodService.UpsertPaymentMethod(c.Request().Context(), &pmapp.UpsertPaymentMethodRequest{
		ID:        id,
		Name:      reqBody.Name,
		Terminal:  reqBody.Terminal,
		TID:       reqBody.TID,
		MID:       reqBody.MID,
		Username:  reqBody.Username,
		FullName:  reqBody.FullName,
		SecureKey: reqBody.SecureKey,
		TestMode:  reqBody.TestMode,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toPaymentMethodResponse(resp))
}

// GetPaymentMethod 支払方法の取得ハンドラー（管理API用）
// @Summary 支払方法を取得（管理API）
// @Tags admin
// @Produce json
// @Param id path string true "支払方法ID" example(afs-counter-1)
// @Param X-API-Key header string true "APIキー"
// @Success 200 {object} PaymentMethodResponse "取得成功"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 404 {object} ErrorResponse "見つからない"
// @Router /admin/payment-methods/{id} [get]
func (h *PaymentMethodHandler) GetPaymentMethod(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	resp, err := h.paymentMethodService.GetPaymentMethod(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toPaymentMethodResponse(resp))
}

func toPaymentMethodResponse(resp *pmapp.PaymentMethodResponse) PaymentMethodResponse {
	return PaymentMethodResponse{
		ID:           resp.ID,
		Name:         resp.Name,
		Terminal:     resp.Terminal,
		TID:          resp.TID,
		MID:          resp.MID,
		Username:     resp.Username,
		FullName:     resp.FullName,
		HasSecureKey: resp.HasSecureKey,
		TestMode:     resp.TestMode,
		Configured:   resp.Configured,
		CreatedAt:    resp.CreatedAt,
		UpdatedAt:    resp.UpdatedAt,
	}
}
