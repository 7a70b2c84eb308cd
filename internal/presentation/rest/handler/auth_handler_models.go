package handler

// GenerateTokenRequest トークン生成リクエスト
// @Description トークン生成リクエスト
type GenerateTokenRequest struct {
	OperatorID string `json:"operator_id" example:"cashier-01"`
	POSID      string `json:"pos_id,omitempty" example:"pos-main"`
}

// GenerateTokenResponse トークン生成レスポンス
// @Description トークン生成レスポンス
type GenerateTokenResponse struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJvcGVyYXRvcl9pZCI6ImNhc2hpZXItMDEifQ.signature"`
	ExpiresIn int    `json:"expires_in" example:"43200"`
	TokenType string `json:"token_type" example:"Bearer"`
}

// ErrorResponse エラーレスポンス
// @Description エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error" example:"bad_request"`
	Message string `json:"message" example:"invalid request body"`
	Code    string `json:"code" example:"bad_request"`
}
