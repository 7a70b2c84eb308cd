package handler

import "time"

// MakePaymentRequest 決済開始リクエスト
// @Description 決済開始リクエスト
type MakePaymentRequest struct {
	PaymentMethodID string `json:"payment_method_id" example:"afs-counter-1"`
	PaymentID       string `json:"payment_id" example:"5f2b9c1e-8d3a-4f6b-9e21-0c7a1d2e3f40"`
	Amount          string `json:"amount" example:"12.500"`
	Currency        string `json:"currency,omitempty" example:"OMR"`
	OrderReference  string `json:"order_reference,omitempty" example:"Order 00001-001-0001"`
}

// FetchPaymentStatusRequest 決済状態の照会リクエスト
// @Description 決済状態の照会リクエスト
type FetchPaymentStatusRequest struct {
	PaymentMethodID  string `json:"payment_method_id" example:"afs-counter-1"`
	AFSTransactionID string `json:"afs_transaction_id" example:"5f2b9c1e-8d3a-4f6b-9e21-0c7a1d2e3f40"`
	LineUUID         string `json:"line_uuid,omitempty" example:"5f2b9c1e-8d3a-4f6b-9e21-0c7a1d2e3f40"`
}

// CancelPaymentRequest 取消リクエスト
// @Description 取消リクエスト
type CancelPaymentRequest struct {
	PaymentMethodID  string `json:"payment_method_id" example:"afs-counter-1"`
	AFSTransactionID string `json:"afs_transaction_id,omitempty" example:"5f2b9c1e-8d3a-4f6b-9e21-0c7a1d2e3f40"`
	LineUUID         string `json:"line_uuid,omitempty" example:"5f2b9c1e-8d3a-4f6b-9e21-0c7a1d2e3f40"`
}

// TerminalResultResponse 端末操作の結果
// @Description 端末操作の結果（success, waiting, polling, cancelled, error）
type TerminalResultResponse struct {
	Status           string                 `json:"status" example:"waiting"`
	Message          string                 `json:"message,omitempty" example:""`
	LineUUID         string                 `json:"line_uuid,omitempty" example:"5f2b9c1e-8d3a-4f6b-9e21-0c7a1d2e3f40"`
	AFSTransactionID string                 `json:"afs_transaction_id,omitempty" example:"5f2b9c1e-8d3a-4f6b-9e21-0c7a1d2e3f40"`
	Response         map[string]interface{} `json:"response,omitempty"`
}

// TerminalPaymentResponse 保存済みの端末決済
// @Description 保存済みの端末決済
type TerminalPaymentResponse struct {
	PaymentID        string                 `json:"payment_id" example:"5f2b9c1e-8d3a-4f6b-9e21-0c7a1d2e3f40"`
	PaymentMethodID  string                 `json:"payment_method_id" example:"afs-counter-1"`
	OrderReference   string                 `json:"order_reference" example:"Order 00001-001-0001"`
	Amount           string                 `json:"amount" example:"12.500"`
	Currency         string                 `json:"currency" example:"OMR"`
	AFSTransactionID string                 `json:"afs_transaction_id" example:"5f2b9c1e-8d3a-4f6b-9e21-0c7a1d2e3f40"`
	Status           string                 `json:"status" example:"completed"`
	LastResponse     map[string]interface{} `json:"last_response"`
	OperatorID       string                 `json:"operator_id" example:"cashier-01"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}
