package auth

import (
	"context"
	"fmt"
	"time"

	"afs-bridge/internal/infrastructure/config"
	otelinfra "afs-bridge/internal/infrastructure/observability/otel"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// クレーム名
const (
	ClaimOperatorID = "operator_id"
	ClaimPOSID      = "pos_id"
)

// AuthApplicationService POSクライアント向けの認証アプリケーションサービス
type AuthApplicationService struct {
	jwtConfig *config.JWTConfig
	logger    *otelinfra.Logger
	now       func() time.Time
}

// NewAuthApplicationService 新しいAuthApplicationServiceを作成
func NewAuthApplicationService(jwtConfig *config.JWTConfig, logger *otelinfra.Logger) *AuthApplicationService {
	return &AuthApplicationService{
		jwtConfig: jwtConfig,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateToken 操作者用のJWTトークンを生成
func (s *AuthApplicationService) GenerateToken(ctx context.Context, req *GenerateTokenRequest) (*GenerateTokenResponse, error) {
	tracer := otel.Tracer("auth-service")
	ctx, span := tracer.Start(ctx, "AuthApplicationService.GenerateToken")
	defer span.End()

	span.SetAttributes(
		attribute.String("operator_id", req.OperatorID),
		attribute.String("pos_id", req.POSID),
	)

	if req.OperatorID == "" {
		err := fmt.Errorf("operator_id is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error(ctx, "Operator ID is required", err, nil)
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(s.jwtConfig.Expiration)

	claims := jwt.MapClaims{
		ClaimOperatorID: req.OperatorID,
		"iss":           s.jwtConfig.Issuer,
		"iat":           now.Unix(),
		"exp":           expiresAt.Unix(),
	}
	if req.POSID != "" {
		claims[ClaimPOSID] = req.POSID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error(ctx, "Failed to generate token", err, map[string]interface{}{
			"operator_id": req.OperatorID,
		})
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info(ctx, "Token generated successfully", map[string]interface{}{
		"operator_id": req.OperatorID,
		"pos_id":      req.POSID,
		"expires_at":  expiresAt.Unix(),
	})

	return &GenerateTokenResponse{
		Token:     tokenString,
		ExpiresIn: int64(s.jwtConfig.Expiration.Seconds()),
		TokenType: "Bearer",
	}, nil
}

// ParseOperatorID トークンを検証して操作者IDを返す
// RESTミドルウェアとgRPCインターセプターで共有する
func ParseOperatorID(cfg *config.JWTConfig, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	operatorID, ok := claims[ClaimOperatorID].(string)
	if !ok || operatorID == "" {
		return "", fmt.Errorf("%w: missing %s", jwt.ErrTokenInvalidClaims, ClaimOperatorID)
	}
	return operatorID, nil
}
