package payment_method

import (
	"context"
)

// PaymentMethodRepository PaymentMethodリポジトリインターフェース
type PaymentMethodRepository interface {
	// Save PaymentMethodを保存（存在する場合は更新）
	Save(ctx context.Context, paymentMethod *PaymentMethod) error

	// FindByID IDでPaymentMethodを取得
	FindByID(ctx context.Context, id string) (*PaymentMethod, error)
}
