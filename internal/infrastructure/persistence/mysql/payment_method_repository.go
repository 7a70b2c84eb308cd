package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"afs-bridge/internal/domain/payment_method"
)

// PaymentMethodRepository MySQL実装のPaymentMethodRepository
type PaymentMethodRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewPaymentMethodRepository 新しいPaymentMethodRepositoryを作成
func NewPaymentMethodRepository(db *DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{
		db:     db,
		tracer: otel.Tracer("payment-method-repository"),
	}
}

// Save PaymentMethodを保存
func (r *PaymentMethodRepository) Save(ctx context.Context, pm *payment_method.PaymentMethod) error {
	ctx, span := r.tracer.Start(ctx, "PaymentMethodRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.payment_method_id", pm.ID()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "payment_methods"),
	)

	query := `
		INSERT INTO payment_methods (
			id, name, terminal, afs_tid, afs_mid, afs_username,
			afs_full_name, afs_secure_key, afs_test_mode,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			terminal = VALUES(terminal),
			afs_tid = VALUES(afs_tid),
			afs_mid = VALUES(afs_mid),
			afs_username = VALUES(afs_username),
			afs_full_name = VALUES(afs_full_name),
			afs_secure_key = VALUES(afs_secure_key),
			afs_test_mode = VALUES(afs_test_mode),
			updated_at = VALUES(updated_at)
	`

	_, err := r.db.ExecContext(ctx, query,
		pm.ID(),
		pm.Name(),
		pm.Terminal().String(),
		pm.TID(),
		pm.MID(),
		pm.Username(),
		pm.FullName(),
		pm.SecureKey(),
		pm.TestMode(),
		pm.CreatedAt(),
		pm.UpdatedAt(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save payment method: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "payment method saved")
	return nil
}

// FindByID IDでPaymentMethodを取得
func (r *PaymentMethodRepository) FindByID(ctx context.Context, id string) (*payment_method.PaymentMethod, error) {
	ctx, span := r.tracer.Start(ctx, "PaymentMethodRepository.FindByID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.payment_method_id", id),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "payment_methods"),
	)

	query := `
		SELECT
			id, name, terminal, afs_tid, afs_mid, afs_username,
			afs_full_name, afs_secure_key, afs_test_mode,
			created_at, updated_at
		FROM payment_methods
		WHERE id = ?
	`

	var dbID, name, terminal string
	var tid, mid, username, fullName, secureKey sql.NullString
	var testMode bool
	var createdAt, updatedAt time.Time

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&dbID,
		&name,
		&terminal,
		&tid,
		&mid,
		&username,
		&fullName,
		&secureKey,
		&testMode,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "payment method not found")
		return nil, payment_method.ErrPaymentMethodNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find payment method: %w", err)
	}

	t, err := payment_method.NewTerminal(terminal)
	if err != nil {
		return nil, fmt.Errorf("invalid terminal: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "payment method found")
	return payment_method.ReconstructPaymentMethod(
		dbID,
		name,
		t,
		tid.String,
		mid.String,
		username.String,
		fullName.String,
		secureKey.String,
		testMode,
		createdAt,
		updatedAt,
	), nil
}
