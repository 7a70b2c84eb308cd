package payment_method

import "time"

// UpsertPaymentMethodRequest 支払方法の登録・更新リクエスト
type UpsertPaymentMethodRequest struct {
	ID        string
	Name      string
	Terminal  string // 空なら "afs"
	TID       string
	MID       string
	Username  string
	FullName  string
	SecureKey string // 空なら既存の値を維持
	TestMode  bool
}

// PaymentMethodResponse 支払方法レスポンス
// セキュアキーは含めず、設定済みかどうかだけを返す
type PaymentMethodResponse struct {
	ID           string
	Name         string
	Terminal     string
	TID          string
	MID          string
	Username     string
	FullName     string
	HasSecureKey bool
	TestMode     bool
	Configured   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
