package handler

import (
	"context"
	"errors"

	terminalapp "afs-bridge/internal/application/terminal"
	"afs-bridge/internal/domain/payment_method"
	"afs-bridge/internal/domain/terminal_payment"
	"afs-bridge/internal/presentation/grpc/interceptor"
	"afs-bridge/internal/presentation/grpc/pb"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// TerminalHandler gRPC端末決済サービスハンドラー
type TerminalHandler struct {
	pb.UnimplementedTerminalServiceServer
	terminalService *terminalapp.TerminalApplicationService
}

// NewTerminalHandler 新しいTerminalHandlerを作成
func NewTerminalHandler(terminalService *terminalapp.TerminalApplicationService) *TerminalHandler {
	return &TerminalHandler{
		terminalService: terminalService,
	}
}

// MakePayment 端末に決済を要求
func (h *TerminalHandler) MakePayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields, err := stringFields(req, "payment_method_id", "payment_id", "amount", "currency", "order_reference")
	if err != nil {
		return nil, err
	}
	if fields["payment_method_id"] == "" {
		return nil, status.Error(codes.InvalidArgument, "payment_method_id is required")
	}

	operatorID, _ := interceptor.OperatorIDFromContext(ctx)
	resp, err := h.terminalService.MakePaymentRequest(ctx, &terminalapp.MakePaymentRequest{
		PaymentMethodID: fields["payment_method_id"],
		PaymentID:       fields["payment_id"],
		Amount:          fields["amount"],
		Currency:        fields["currency"],
		OrderReference:  fields["order_reference"],
		OperatorID:      operatorID,
	})
	if err != nil {
		return nil, h.handleError(err)
	}

	return toStruct(map[string]interface{}{
		"status":             resp.Status,
		"message":            resp.Message,
		"line_uuid":          resp.LineUUID,
		"afs_transaction_id": resp.AFSTransactionID,
		"response":           resp.Response,
	})
}

// FetchPaymentStatus 端末の決済状態を照会
func (h *TerminalHandler) FetchPaymentStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields, err := stringFields(req, "payment_method_id", "afs_transaction_id", "line_uuid")
	if err != nil {
		return nil, err
	}
	if fields["payment_method_id"] == "" {
		return nil, status.Error(codes.InvalidArgument, "payment_method_id is required")
	}

	resp, err := h.terminalService.FetchPaymentStatus(ctx, &terminalapp.FetchPaymentStatusRequest{
		PaymentMethodID:  fields["payment_method_id"],
		AFSTransactionID: fields["afs_transaction_id"],
		LineUUID:         fields["line_uuid"],
	})
	if err != nil {
		return nil, h.handleError(err)
	}

	return toStruct(map[string]interface{}{
		"status":    resp.Status,
		"message":   resp.Message,
		"line_uuid": resp.LineUUID,
		"response":  resp.Response,
	})
}

// CancelPayment 端末の操作を取消
func (h *TerminalHandler) CancelPayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields, err := stringFields(req, "payment_method_id", "afs_transaction_id", "line_uuid")
	if err != nil {
		return nil, err
	}
	if fields["payment_method_id"] == "" {
		return nil, status.Error(codes.InvalidArgument, "payment_method_id is required")
	}

	resp, err := h.terminalService.CancelPaymentRequest(ctx, &terminalapp.CancelPaymentRequest{
		PaymentMethodID:  fields["payment_method_id"],
		AFSTransactionID: fields["afs_transaction_id"],
		LineUUID:         fields["line_uuid"],
	})
	if err != nil {
		return nil, h.handleError(err)
	}

	return toStruct(map[string]interface{}{
		"status":    resp.Status,
		"message":   resp.Message,
		"line_uuid": resp.LineUUID,
		"response":  resp.Response,
	})
}

// stringFields Structから文字列フィールドを取り出す
// 金額は桁数をそのまま端末に送るため、数値型は受け付けない
func stringFields(req *structpb.Struct, names ...string) (map[string]string, error) {
	values := make(map[string]string, len(names))
	in := req.GetFields()
	for _, name := range names {
		v, ok := in[name]
		if !ok {
			continue
		}
		if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
			continue
		}
		s, isString := v.GetKind().(*structpb.Value_StringValue)
		if !isString {
			return nil, status.Errorf(codes.InvalidArgument, "%s must be a string", name)
		}
		values[name] = s.StringValue
	}
	return values, nil
}

func toStruct(m map[string]interface{}) (*structpb.Struct, error) {
	for k, v := range m {
		switch x := v.(type) {
		case string:
			if x == "" {
				delete(m, k)
			}
		case map[string]interface{}:
			if x == nil {
				delete(m, k)
			}
		}
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return s, nil
}

func (h *TerminalHandler) handleError(err error) error {
	switch {
	case errors.Is(err, terminal_payment.ErrRefundNotSupported),
		errors.Is(err, terminal_payment.ErrInvalidAmount),
		errors.Is(err, terminal_payment.ErrInvalidPaymentID),
		errors.Is(err, payment_method.ErrInvalidPaymentMethod),
		errors.Is(err, payment_method.ErrUnsupportedTerminal):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, payment_method.ErrPaymentMethodNotFound),
		errors.Is(err, terminal_payment.ErrTerminalPaymentNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, terminal_payment.ErrTransactionInProgress),
		errors.Is(err, payment_method.ErrTerminalNotConfigured):
		return status.Error(codes.FailedPrecondition, err.Error())
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	return status.Error(codes.Internal, "internal server error")
}
