package terminal

import (
	"context"

	"afs-bridge/internal/infrastructure/afs"
)

// Gateway AFS端末サービスとの通信
type Gateway interface {
	SendSale(ctx context.Context, amount, invoiceNumber string) *afs.Result
	SendEnquiry(ctx context.Context, referenceNumber string) *afs.Result
	SendCancellation(ctx context.Context) *afs.Result
}

// GatewayFactory 認証情報からGatewayを作成する
type GatewayFactory func(creds afs.Credentials) Gateway

// NewAFSGatewayFactory afs.Clientを生成するGatewayFactoryを作成
func NewAFSGatewayFactory(opts ...afs.Option) GatewayFactory {
	return func(creds afs.Credentials) Gateway {
		return afs.NewClient(creds, opts...)
	}
}
