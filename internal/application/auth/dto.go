package auth

// GenerateTokenRequest トークン生成リクエスト
type GenerateTokenRequest struct {
	OperatorID string
	POSID      string // レジ（POS設定）の識別子、任意
}

// GenerateTokenResponse トークン生成レスポンス
type GenerateTokenResponse struct {
	Token     string
	ExpiresIn int64  // 秒単位
	TokenType string // "Bearer"
}
