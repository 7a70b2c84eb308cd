package terminal_payment

import (
	"context"
)

// TerminalPaymentRepository TerminalPaymentリポジトリインターフェース
type TerminalPaymentRepository interface {
	// Save TerminalPaymentを保存（存在する場合は更新）
	Save(ctx context.Context, payment *TerminalPayment) error

	// FindByPaymentID 支払行IDでTerminalPaymentを取得
	FindByPaymentID(ctx context.Context, paymentID string) (*TerminalPayment, error)

	// FindByAFSTransactionID AFS取引IDでTerminalPaymentを取得
	FindByAFSTransactionID(ctx context.Context, afsTransactionID string) (*TerminalPayment, error)
}
