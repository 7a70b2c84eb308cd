package terminal

import "time"

// ホスト（POS）に返すステータス
const (
	StatusSuccess   = "success"
	StatusWaiting   = "waiting"
	StatusPolling   = "polling"
	StatusCancelled = "cancelled"
	StatusError     = "error"
)

// MakePaymentRequest 決済開始リクエスト
type MakePaymentRequest struct {
	PaymentMethodID string
	PaymentID       string // POSの支払行UUID（空なら採番する）
	Amount          string // 小数点以下の桁数を含めてそのまま端末に送る
	Currency        string
	OrderReference  string
	OperatorID      string
}

// MakePaymentResponse 決済開始レスポンス
type MakePaymentResponse struct {
	Status           string
	Message          string
	LineUUID         string
	AFSTransactionID string
	Response         map[string]interface{}
}

// FetchPaymentStatusRequest 決済状態の照会リクエスト
type FetchPaymentStatusRequest struct {
	PaymentMethodID  string
	AFSTransactionID string
	LineUUID         string
}

// FetchPaymentStatusResponse 決済状態の照会レスポンス
type FetchPaymentStatusResponse struct {
	Status   string
	Message  string
	LineUUID string
	Response map[string]interface{}
}

// CancelPaymentRequest 取消リクエスト
type CancelPaymentRequest struct {
	PaymentMethodID  string
	AFSTransactionID string
	LineUUID         string
}

// CancelPaymentResponse 取消レスポンス
type CancelPaymentResponse struct {
	Status   string
	Message  string
	LineUUID string
	Response map[string]interface{}
}

// TerminalPaymentResponse 保存済みの端末決済
type TerminalPaymentResponse struct {
	PaymentID        string
	PaymentMethodID  string
	OrderReference   string
	Amount           string
	Currency         string
	AFSTransactionID string
	Status           string
	LastResponse     map[string]interface{}
	OperatorID       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
