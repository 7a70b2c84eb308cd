package terminal_payment

import "errors"

var (
	// ErrTerminalPaymentNotFound TerminalPaymentが見つからないエラー
	ErrTerminalPaymentNotFound = errors.New("terminal payment not found")
	// ErrRefundNotSupported 返金（マイナス金額）は未対応
	ErrRefundNotSupported = errors.New("Refunds are not supported by this payment method.")
	// ErrInvalidAmount 金額として解釈できないエラー
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidPaymentID 支払行IDが空のエラー
	ErrInvalidPaymentID = errors.New("invalid payment id")
	// ErrTransactionInProgress 同じ支払行の取引が端末で進行中
	ErrTransactionInProgress = errors.New("Another transaction is already in progress.")
)
