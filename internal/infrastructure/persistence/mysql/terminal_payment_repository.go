package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"afs-bridge/internal/domain/terminal_payment"
)

// TerminalPaymentRepository MySQL実装のTerminalPaymentRepository
type TerminalPaymentRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewTerminalPaymentRepository 新しいTerminalPaymentRepositoryを作成
func NewTerminalPaymentRepository(db *DB) *TerminalPaymentRepository {
	return &TerminalPaymentRepository{
		db:     db,
		tracer: otel.Tracer("terminal-payment-repository"),
	}
}

const terminalPaymentColumns = `
	payment_id, payment_method_id, order_reference, amount, currency,
	afs_transaction_id, status, last_response, operator_id,
	created_at, updated_at
`

// Save TerminalPaymentを保存（存在する場合は更新）
func (r *TerminalPaymentRepository) Save(ctx context.Context, tp *terminal_payment.TerminalPayment) error {
	ctx, span := r.tracer.Start(ctx, "TerminalPaymentRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.payment_id", tp.PaymentID()),
		attribute.String("db.status", tp.Status().String()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "terminal_payments"),
	)

	query := `
		INSERT INTO terminal_payments (` + terminalPaymentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			payment_method_id = VALUES(payment_method_id),
			order_reference = VALUES(order_reference),
			amount = VALUES(amount),
			currency = VALUES(currency),
			afs_transaction_id = VALUES(afs_transaction_id),
			status = VALUES(status),
			last_response = VALUES(last_response),
			operator_id = VALUES(operator_id),
			updated_at = VALUES(updated_at)
	`

	lastResponseJSON, err := json.Marshal(tp.LastResponse())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to marshal last_response: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		tp.PaymentID(),
		tp.PaymentMethodID(),
		tp.OrderReference(),
		tp.Amount(),
		tp.Currency(),
		nullString(tp.AFSTransactionID()),
		tp.Status().String(),
		string(lastResponseJSON),
		tp.OperatorID(),
		tp.CreatedAt(),
		tp.UpdatedAt(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save terminal payment: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "terminal payment saved")
	return nil
}

// FindByPaymentID 支払行IDでTerminalPaymentを取得
func (r *TerminalPaymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*terminal_payment.TerminalPayment, error) {
	ctx, span := r.tracer.Start(ctx, "TerminalPaymentRepository.FindByPaymentID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.payment_id", paymentID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "terminal_payments"),
	)

	query := `SELECT ` + terminalPaymentColumns + ` FROM terminal_payments WHERE payment_id = ?`
	return r.findOne(ctx, span, query, paymentID)
}

// FindByAFSTransactionID AFS取引IDでTerminalPaymentを取得
// 同じ取引IDが複数ある場合は最も新しいものを返す
func (r *TerminalPaymentRepository) FindByAFSTransactionID(ctx context.Context, afsTransactionID string) (*terminal_payment.TerminalPayment, error) {
	ctx, span := r.tracer.Start(ctx, "TerminalPaymentRepository.FindByAFSTransactionID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.afs_transaction_id", afsTransactionID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "terminal_payments"),
	)

	query := `SELECT ` + terminalPaymentColumns + ` FROM terminal_payments
		WHERE afs_transaction_id = ?
		ORDER BY updated_at DESC
		LIMIT 1`
	return r.findOne(ctx, span, query, afsTransactionID)
}

func (r *TerminalPaymentRepository) findOne(ctx context.Context, span trace.Span, query string, arg string) (*terminal_payment.TerminalPayment, error) {
	var paymentID, paymentMethodID, amount, currency, status string
	var orderReference, afsTransactionID, lastResponseJSON, operatorID sql.NullString
	var createdAt, updatedAt time.Time

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&paymentID,
		&paymentMethodID,
		&orderReference,
		&amount,
		&currency,
		&afsTransactionID,
		&status,
		&lastResponseJSON,
		&operatorID,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "terminal payment not found")
		return nil, terminal_payment.ErrTerminalPaymentNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find terminal payment: %w", err)
	}

	st, err := terminal_payment.NewStatus(status)
	if err != nil {
		return nil, err
	}

	var lastResponse map[string]interface{}
	if lastResponseJSON.Valid && lastResponseJSON.String != "" {
		if err := json.Unmarshal([]byte(lastResponseJSON.String), &lastResponse); err != nil {
			return nil, fmt.Errorf("failed to unmarshal last_response: %w", err)
		}
	}

	span.SetStatus(otelcodes.Ok, "terminal payment found")
	return terminal_payment.ReconstructTerminalPayment(
		paymentID,
		paymentMethodID,
		orderReference.String,
		amount,
		currency,
		afsTransactionID.String,
		st,
		lastResponse,
		operatorID.String,
		createdAt,
		updatedAt,
	), nil
}

// nullString 空文字をNULLとして保存する
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
