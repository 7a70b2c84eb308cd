package payment_method

import "errors"

var (
	// ErrPaymentMethodNotFound PaymentMethodが見つからないエラー
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	// ErrTerminalNotConfigured 端末の認証情報が不足しているエラー
	ErrTerminalNotConfigured = errors.New("AFS terminal is not configured correctly.")
	// ErrInvalidPaymentMethod 無効なPaymentMethodエラー
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	// ErrUnsupportedTerminal 未対応の端末種別エラー
	ErrUnsupportedTerminal = errors.New("unsupported terminal")
)
