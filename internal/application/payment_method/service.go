package payment_method

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"afs-bridge/internal/domain/payment_method"
	otelinfra "afs-bridge/internal/infrastructure/observability/otel"
)

// PaymentMethodApplicationService 支払方法の管理アプリケーションサービス
type PaymentMethodApplicationService struct {
	paymentMethodRepo payment_method.PaymentMethodRepository
	logger            *otelinfra.Logger
	tracer            trace.Tracer
}

// NewPaymentMethodApplicationService 新しいPaymentMethodApplicationServiceを作成
func NewPaymentMethodApplicationService(
	paymentMethodRepo payment_method.PaymentMethodRepository,
	logger *otelinfra.Logger,
) *PaymentMethodApplicationService {
	return &PaymentMethodApplicationService{
		paymentMethodRepo: paymentMethodRepo,
		logger:            logger,
		tracer:            otel.Tracer("payment-method-service"),
	}
}

// UpsertPaymentMethod 支払方法を登録または更新
func (s *PaymentMethodApplicationService) UpsertPaymentMethod(ctx context.Context, req *UpsertPaymentMethodRequest) (*PaymentMethodResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentMethodApplicationService.UpsertPaymentMethod")
	defer span.End()

	span.SetAttributes(attribute.String("payment_method_id", req.ID))

	if req.Terminal != "" {
		if _, err := payment_method.NewTerminal(req.Terminal); err != nil {
			s.recordSpanError(span, err)
			return nil, err
		}
	}

	pm, err := s.paymentMethodRepo.FindByID(ctx, req.ID)
	if err != nil && !errors.Is(err, payment_method.ErrPaymentMethodNotFound) {
		s.recordSpanError(span, err)
		return nil, fmt.Errorf("failed to find payment method: %w", err)
	}
	if pm == nil {
		pm, err = payment_method.NewPaymentMethod(req.ID, req.Name)
		if err != nil {
			s.recordSpanError(span, err)
			return nil, err
		}
	} else {
		pm.Rename(req.Name)
	}

	pm.ConfigureTerminal(req.TID, req.MID, req.Username, req.FullName)
	pm.SetSecureKey(req.SecureKey)
	pm.SetTestMode(req.TestMode)

	if err := s.paymentMethodRepo.Save(ctx, pm); err != nil {
		s.recordSpanError(span, err)
		s.logger.Error(ctx, "Failed to save payment method", err, map[string]interface{}{
			"payment_method_id": pm.ID(),
		})
		return nil, fmt.Errorf("failed to save payment method: %w", err)
	}

	s.logger.Info(ctx, "Payment method saved", map[string]interface{}{
		"payment_method_id": pm.ID(),
		"configured":        pm.IsAFSConfigured(),
		"test_mode":         pm.TestMode(),
	})

	return toResponse(pm), nil
}

// GetPaymentMethod 支払方法を取得
func (s *PaymentMethodApplicationService) GetPaymentMethod(ctx context.Context, id string) (*PaymentMethodResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentMethodApplicationService.GetPaymentMethod")
	defer span.End()

	span.SetAttributes(attribute.String("payment_method_id", id))

	pm, err := s.paymentMethodRepo.FindByID(ctx, id)
	if err != nil {
		s.recordSpanError(span, err)
		if errors.Is(err, payment_method.ErrPaymentMethodNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find payment method: %w", err)
	}

	return toResponse(pm), nil
}

func (s *PaymentMethodApplicationService) recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func toResponse(pm *payment_method.PaymentMethod) *PaymentMethodResponse {
	return &PaymentMethodResponse{
		ID:           pm.ID(),
		Name:         pm.Name(),
		Terminal:     pm.Terminal().String(),
		TID:          pm.TID(),
		MID:          pm.MID(),
		Username:     pm.Username(),
		FullName:     pm.FullName(),
		HasSecureKey: pm.HasSecureKey(),
		TestMode:     pm.TestMode(),
		Configured:   pm.IsAFSConfigured(),
		CreatedAt:    pm.CreatedAt(),
		UpdatedAt:    pm.UpdatedAt(),
	}
}
