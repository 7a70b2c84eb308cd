package handler

import "time"

// UpsertPaymentMethodRequest 支払方法の登録・更新リクエスト
// @Description 支払方法の登録・更新リクエスト（secure_key が空なら既存の値を維持）
type UpsertPaymentMethodRequest struct {
	Name      string `json:"name" example:"AFS Counter 1"`
	Terminal  string `json:"terminal,omitempty" example:"afs"`
	TID       string `json:"afs_tid" example:"T0000001"`
	MID       string `json:"afs_mid" example:"M0000001"`
	Username  string `json:"afs_username" example:"ecr-user"`
	FullName  string `json:"afs_full_name" example:"ECR User"`
	SecureKey string `json:"afs_secure_key,omitempty" example:"s3cr3t"`
	TestMode  bool   `json:"afs_test_mode" example:"false"`
}

// PaymentMethodResponse 支払方法レスポンス
// @Description 支払方法レスポンス（secure_key は返さない）
type PaymentMethodResponse struct {
	ID           string    `json:"id" example:"afs-counter-1"`
	Name         string    `json:"name" example:"AFS Counter 1"`
	Terminal     string    `json:"terminal" example:"afs"`
	TID          string    `json:"afs_tid" example:"T0000001"`
	MID          string    `json:"afs_mid" example:"M0000001"`
	Username     string    `json:"afs_username" example:"ecr-user"`
	FullName     string    `json:"afs_full_name" example:"ECR User"`
	HasSecureKey bool      `json:"has_secure_key" example:"true"`
	TestMode     bool      `json:"afs_test_mode" example:"false"`
	Configured   bool      `json:"configured" example:"true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
