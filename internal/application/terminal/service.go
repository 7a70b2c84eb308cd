package terminal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"afs-bridge/internal/domain/payment_method"
	"afs-bridge/internal/domain/terminal_payment"
	"afs-bridge/internal/infrastructure/afs"
	"afs-bridge/internal/infrastructure/config"
	otelinfra "afs-bridge/internal/infrastructure/observability/otel"
)

// TerminalApplicationService POSとAFS端末の間の決済ワークフロー
// 端末の応答が正であり、保存の失敗はログに残すだけで結果を変えない
type TerminalApplicationService struct {
	paymentMethodRepo   payment_method.PaymentMethodRepository
	terminalPaymentRepo terminal_payment.TerminalPaymentRepository
	gateways            GatewayFactory
	afsConfig           *config.AFSConfig
	logger              *otelinfra.Logger
	metrics             *otelinfra.Metrics
	tracer              trace.Tracer
	newID               func() string
	now                 func() time.Time
}

// NewTerminalApplicationService 新しいTerminalApplicationServiceを作成
func NewTerminalApplicationService(
	paymentMethodRepo payment_method.PaymentMethodRepository,
	terminalPaymentRepo terminal_payment.TerminalPaymentRepository,
	gateways GatewayFactory,
	afsConfig *config.AFSConfig,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *TerminalApplicationService {
	return &TerminalApplicationService{
		paymentMethodRepo:   paymentMethodRepo,
		terminalPaymentRepo: terminalPaymentRepo,
		gateways:            gateways,
		afsConfig:           afsConfig,
		logger:              logger,
		metrics:             metrics,
		tracer:              otel.Tracer("terminal-service"),
		newID:               uuid.NewString,
		now:                 time.Now,
	}
}

// MakePaymentRequest 端末に販売を要求する
func (s *TerminalApplicationService) MakePaymentRequest(ctx context.Context, req *MakePaymentRequest) (*MakePaymentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "TerminalApplicationService.MakePaymentRequest")
	defer span.End()

	paymentID := req.PaymentID
	if paymentID == "" {
		paymentID = s.newID()
	}

	span.SetAttributes(
		attribute.String("payment_method_id", req.PaymentMethodID),
		attribute.String("payment_id", paymentID),
		attribute.String("amount", req.Amount),
	)

	s.logger.Info(ctx, "Making terminal payment request", map[string]interface{}{
		"payment_method_id": req.PaymentMethodID,
		"payment_id":        paymentID,
		"amount":            req.Amount,
	})

	// 金額の検証（返金は未対応）
	payment, err := terminal_payment.NewTerminalPayment(paymentID, req.PaymentMethodID, req.Amount)
	if err != nil {
		s.recordSpanError(span, err)
		return nil, err
	}
	payment.SetCurrency(req.Currency)
	payment.SetOrderReference(req.OrderReference)
	payment.SetOperatorID(req.OperatorID)

	// 同じ支払行の取引が進行中なら拒否、承認済みなら結果を返す
	// 拒否・取消・期限切れの支払行は再度販売を要求できる
	existing := s.findByPaymentID(ctx, paymentID)
	if existing != nil && existing.IsInProgressAt(s.now(), s.afsConfig.PendingTTL) {
		err := terminal_payment.ErrTransactionInProgress
		s.recordSpanError(span, err)
		return nil, err
	}
	if existing != nil && existing.IsCompleted() {
		s.metrics.RecordPaymentOutcome(ctx, "make_payment", StatusSuccess)
		return &MakePaymentResponse{
			Status:           StatusSuccess,
			LineUUID:         paymentID,
			AFSTransactionID: existing.AFSTransactionID(),
			Response:         existing.LastResponse(),
		}, nil
	}

	gateway, err := s.gateway(ctx, req.PaymentMethodID)
	if errors.Is(err, payment_method.ErrTerminalNotConfigured) {
		s.metrics.RecordPaymentOutcome(ctx, "make_payment", StatusError)
		return &MakePaymentResponse{
			Status:   StatusError,
			Message:  err.Error(),
			LineUUID: paymentID,
		}, nil
	}
	if err != nil {
		s.recordSpanError(span, err)
		return nil, err
	}

	result := gateway.SendSale(ctx, payment.Amount(), paymentID)
	payment.RecordResponse(result.Map())

	resp := &MakePaymentResponse{
		LineUUID: paymentID,
		Response: result.Map(),
	}
	switch {
	case result.IsError():
		payment.Fail()
		resp.Status = StatusError
		resp.Message = result.Message()
		span.SetStatus(otelcodes.Error, result.Message())
		s.logger.Error(ctx, "Terminal sale failed", result.Err, map[string]interface{}{
			"payment_id": paymentID,
		})
	case isApproved(result):
		payment.Complete(paymentID)
		resp.Status = StatusSuccess
		resp.AFSTransactionID = paymentID
	default:
		payment.Wait(paymentID)
		if isDeclined(result) {
			// ホストには waiting を返すが、端末に進行中の取引は無い
			payment.Fail()
		}
		resp.Status = StatusWaiting
		resp.AFSTransactionID = paymentID
	}

	s.save(ctx, payment)
	s.metrics.RecordPaymentOutcome(ctx, "make_payment", resp.Status)

	s.logger.Info(ctx, "Terminal payment request processed", map[string]interface{}{
		"payment_id": paymentID,
		"status":     resp.Status,
	})

	return resp, nil
}

// FetchPaymentStatus 端末に取引状態を照会する
// 承認以外の応答や通信エラーはすべて polling として返す
func (s *TerminalApplicationService) FetchPaymentStatus(ctx context.Context, req *FetchPaymentStatusRequest) (*FetchPaymentStatusResponse, error) {
	ctx, span := s.tracer.Start(ctx, "TerminalApplicationService.FetchPaymentStatus")
	defer span.End()

	reference := req.AFSTransactionID
	if reference == "" {
		reference = req.LineUUID
	}
	if reference == "" {
		err := terminal_payment.ErrInvalidPaymentID
		s.recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("payment_method_id", req.PaymentMethodID),
		attribute.String("afs_transaction_id", reference),
	)

	gateway, err := s.gateway(ctx, req.PaymentMethodID)
	if errors.Is(err, payment_method.ErrTerminalNotConfigured) {
		s.metrics.RecordPaymentOutcome(ctx, "fetch_status", StatusError)
		return &FetchPaymentStatusResponse{
			Status:   StatusError,
			Message:  err.Error(),
			LineUUID: req.LineUUID,
		}, nil
	}
	if err != nil {
		s.recordSpanError(span, err)
		return nil, err
	}

	result := gateway.SendEnquiry(ctx, reference)

	resp := &FetchPaymentStatusResponse{
		LineUUID: req.LineUUID,
		Response: result.Map(),
	}
	approved := !result.IsError() && isApproved(result)
	if approved {
		resp.Status = StatusSuccess
	} else {
		resp.Status = StatusPolling
		if result.IsError() {
			resp.Message = result.Message()
			s.logger.Warn(ctx, "Terminal enquiry failed, continuing to poll", map[string]interface{}{
				"afs_transaction_id": reference,
				"error":              result.Message(),
			})
		}
	}

	if stored := s.findByAFSTransactionID(ctx, reference); stored != nil {
		stored.RecordResponse(result.Map())
		switch {
		case approved:
			stored.Complete(reference)
		case stored.IsInProgress() && !result.IsError() && isDeclined(result):
			stored.Fail()
		}
		s.save(ctx, stored)
	}

	s.metrics.RecordPaymentOutcome(ctx, "fetch_status", resp.Status)
	return resp, nil
}

// CancelPaymentRequest 端末で進行中の操作を取り消す
func (s *TerminalApplicationService) CancelPaymentRequest(ctx context.Context, req *CancelPaymentRequest) (*CancelPaymentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "TerminalApplicationService.CancelPaymentRequest")
	defer span.End()

	span.SetAttributes(
		attribute.String("payment_method_id", req.PaymentMethodID),
		attribute.String("afs_transaction_id", req.AFSTransactionID),
	)

	s.logger.Info(ctx, "Cancelling terminal payment request", map[string]interface{}{
		"payment_method_id":  req.PaymentMethodID,
		"afs_transaction_id": req.AFSTransactionID,
		"line_uuid":          req.LineUUID,
	})

	gateway, err := s.gateway(ctx, req.PaymentMethodID)
	if errors.Is(err, payment_method.ErrTerminalNotConfigured) {
		s.metrics.RecordPaymentOutcome(ctx, "cancel", StatusError)
		return &CancelPaymentResponse{
			Status:   StatusError,
			Message:  err.Error(),
			LineUUID: req.LineUUID,
		}, nil
	}
	if err != nil {
		s.recordSpanError(span, err)
		return nil, err
	}

	result := gateway.SendCancellation(ctx)

	resp := &CancelPaymentResponse{
		LineUUID: req.LineUUID,
		Response: result.Map(),
	}
	webStatus, _ := result.Field(afs.FieldWebResponseStatus)
	switch {
	case result.IsError():
		resp.Status = StatusError
		resp.Message = result.Message()
	case terminal_payment.IsCancellationAccepted(webStatus):
		resp.Status = StatusCancelled
	default:
		resp.Status = StatusError
		resp.Message, _ = result.Field(afs.FieldPosRespText)
	}

	// 端末が応答した場合のみ支払行を更新する
	// 取消が受け付けられなければ端末に進行中の取引は無いため失敗とする
	if !result.IsError() {
		stored := s.findByPaymentID(ctx, req.LineUUID)
		if stored == nil {
			stored = s.findByAFSTransactionID(ctx, req.AFSTransactionID)
		}
		if stored != nil && stored.IsInProgress() {
			stored.RecordResponse(result.Map())
			if resp.Status == StatusCancelled {
				stored.Cancel()
			} else {
				stored.Fail()
			}
			s.save(ctx, stored)
		}
	}

	s.metrics.RecordPaymentOutcome(ctx, "cancel", resp.Status)
	return resp, nil
}

// GetTerminalPayment 保存済みの端末決済を取得
func (s *TerminalApplicationService) GetTerminalPayment(ctx context.Context, paymentID string) (*TerminalPaymentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "TerminalApplicationService.GetTerminalPayment")
	defer span.End()

	span.SetAttributes(attribute.String("payment_id", paymentID))

	payment, err := s.terminalPaymentRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		s.recordSpanError(span, err)
		if errors.Is(err, terminal_payment.ErrTerminalPaymentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find terminal payment: %w", err)
	}

	return &TerminalPaymentResponse{
		PaymentID:        payment.PaymentID(),
		PaymentMethodID:  payment.PaymentMethodID(),
		OrderReference:   payment.OrderReference(),
		Amount:           payment.Amount(),
		Currency:         payment.Currency(),
		AFSTransactionID: payment.AFSTransactionID(),
		Status:           payment.Status().String(),
		LastResponse:     payment.LastResponse(),
		OperatorID:       payment.OperatorID(),
		CreatedAt:        payment.CreatedAt(),
		UpdatedAt:        payment.UpdatedAt(),
	}, nil
}

// gateway 支払方法の設定からGatewayを作成
// 認証情報が不足している場合は通信せずに ErrTerminalNotConfigured を返す
func (s *TerminalApplicationService) gateway(ctx context.Context, paymentMethodID string) (Gateway, error) {
	pm, err := s.paymentMethodRepo.FindByID(ctx, paymentMethodID)
	if err != nil {
		if errors.Is(err, payment_method.ErrPaymentMethodNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find payment method: %w", err)
	}

	if !pm.IsAFSConfigured() {
		s.logger.Error(ctx, "AFS credentials are not fully configured", payment_method.ErrTerminalNotConfigured, map[string]interface{}{
			"payment_method_id": pm.ID(),
			"payment_method":    pm.Name(),
		})
		return nil, payment_method.ErrTerminalNotConfigured
	}

	return s.gateways(afs.Credentials{
		ServiceURL: pm.ServiceURL(s.afsConfig.ServiceURL, s.afsConfig.TestServiceURL),
		TID:        pm.TID(),
		MID:        pm.MID(),
		SecureKey:  pm.SecureKey(),
	}), nil
}

func (s *TerminalApplicationService) findByPaymentID(ctx context.Context, paymentID string) *terminal_payment.TerminalPayment {
	if paymentID == "" {
		return nil
	}
	payment, err := s.terminalPaymentRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		if !errors.Is(err, terminal_payment.ErrTerminalPaymentNotFound) {
			s.logger.Warn(ctx, "Failed to load terminal payment", map[string]interface{}{
				"payment_id": paymentID,
				"error":      err.Error(),
			})
		}
		return nil
	}
	return payment
}

func (s *TerminalApplicationService) findByAFSTransactionID(ctx context.Context, afsTransactionID string) *terminal_payment.TerminalPayment {
	if afsTransactionID == "" {
		return nil
	}
	payment, err := s.terminalPaymentRepo.FindByAFSTransactionID(ctx, afsTransactionID)
	if err != nil {
		if !errors.Is(err, terminal_payment.ErrTerminalPaymentNotFound) {
			s.logger.Warn(ctx, "Failed to load terminal payment", map[string]interface{}{
				"afs_transaction_id": afsTransactionID,
				"error":              err.Error(),
			})
		}
		return nil
	}
	return payment
}

func (s *TerminalApplicationService) save(ctx context.Context, payment *terminal_payment.TerminalPayment) {
	if err := s.terminalPaymentRepo.Save(ctx, payment); err != nil {
		s.logger.Error(ctx, "Failed to save terminal payment", err, map[string]interface{}{
			"payment_id": payment.PaymentID(),
			"status":     payment.Status().String(),
		})
	}
}

func (s *TerminalApplicationService) recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
}

// isApproved 端末レスポンスが承認かどうか（欠落したフィールドは承認ではない）
func isApproved(result *afs.Result) bool {
	posRespText, _ := result.Field(afs.FieldPosRespText)
	webStatus, _ := result.Field(afs.FieldWebResponseStatus)
	return terminal_payment.IsApproved(posRespText, webStatus)
}

// isDeclined 端末レスポンスが確定的な拒否かどうか
func isDeclined(result *afs.Result) bool {
	webStatus, _ := result.Field(afs.FieldWebResponseStatus)
	return terminal_payment.IsDeclined(webStatus)
}
