package mysql

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"afs-bridge/internal/domain/terminal_payment"
)

var terminalPaymentRowColumns = []string{
	"payment_id", "payment_method_id", "order_reference", "amount", "currency",
	"afs_transaction_id", "status", "last_response", "operator_id",
	"created_at", "updated_at",
}

func newTestTerminalPaymentRepository(t *testing.T) (*TerminalPaymentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	repo := &TerminalPaymentRepository{
		db:     &DB{DB: db},
		tracer: noop.NewTracerProvider().Tracer("test"),
	}
	return repo, mock, func() { db.Close() }
}

func TestTerminalPaymentRepository_Save(t *testing.T) {
	repo, mock, closeDB := newTestTerminalPaymentRepository(t)
	defer closeDB()

	tests := []struct {
		name      string
		payment   func() *terminal_payment.TerminalPayment
		setupMock func()
		wantError bool
	}{
		{
			name: "正常系: 応答待ちの支払行を保存",
			payment: func() *terminal_payment.TerminalPayment {
				tp, err := terminal_payment.NewTerminalPayment("line-1", "pm-1", "10.500")
				require.NoError(t, err)
				tp.SetOrderReference("Order 1")
				tp.SetOperatorID("cashier-1")
				tp.RecordResponse(map[string]interface{}{"PosRespText": "IN PROGRESS"})
				tp.Wait("line-1")
				return tp
			},
			setupMock: func() {
				mock.ExpectExec(`INSERT INTO terminal_payments`).
					WithArgs(
						"line-1",
						"pm-1",
						"Order 1",
						"10.500",
						"OMR",
						"line-1",
						"waiting",
						`{"PosRespText":"IN PROGRESS"}`,
						"cashier-1",
						sqlmock.AnyArg(),
						sqlmock.AnyArg(),
					).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "正常系: 取引IDが無ければNULLで保存",
			payment: func() *terminal_payment.TerminalPayment {
				tp, err := terminal_payment.NewTerminalPayment("line-2", "pm-1", "1")
				require.NoError(t, err)
				tp.Fail()
				return tp
			},
			setupMock: func() {
				mock.ExpectExec(`INSERT INTO terminal_payments`).
					WithArgs(
						"line-2",
						"pm-1",
						"",
						"1",
						"OMR",
						nil,
						"failed",
						`{}`,
						"",
						sqlmock.AnyArg(),
						sqlmock.AnyArg(),
					).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "異常系: DBエラー",
			payment: func() *terminal_payment.TerminalPayment {
				tp, err := terminal_payment.NewTerminalPayment("line-3", "pm-1", "1")
				require.NoError(t, err)
				return tp
			},
			setupMock: func() {
				mock.ExpectExec(`INSERT INTO terminal_payments`).
					WillReturnError(sql.ErrConnDone)
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()
			err := repo.Save(context.Background(), tt.payment())

			if tt.wantError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "failed to save terminal payment")
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTerminalPaymentRepository_FindByPaymentID(t *testing.T) {
	repo, mock, closeDB := newTestTerminalPaymentRepository(t)
	defer closeDB()

	now := time.Now()

	tests := []struct {
		name      string
		paymentID string
		setupMock func()
		wantError error
		checkFunc func(*testing.T, *terminal_payment.TerminalPayment)
	}{
		{
			name:      "正常系: 承認済みの支払行",
			paymentID: "line-1",
			setupMock: func() {
				rows := sqlmock.NewRows(terminalPaymentRowColumns).
					AddRow("line-1", "pm-1", "Order 1", "10.500", "OMR", "line-1", "completed",
						`{"PosRespText":"APPROVAL","WebResponseStatus":"Success"}`, "cashier-1", now, now)
				mock.ExpectQuery(`SELECT .* FROM terminal_payments WHERE payment_id = \?`).
					WithArgs("line-1").
					WillReturnRows(rows)
			},
			checkFunc: func(t *testing.T, tp *terminal_payment.TerminalPayment) {
				assert.Equal(t, "line-1", tp.PaymentID())
				assert.Equal(t, "10.500", tp.Amount())
				assert.True(t, tp.IsCompleted())
				assert.Equal(t, "APPROVAL", tp.LastResponse()["PosRespText"])
				assert.Equal(t, "cashier-1", tp.OperatorID())
			},
		},
		{
			name:      "正常系: NULLの項目は空",
			paymentID: "line-2",
			setupMock: func() {
				rows := sqlmock.NewRows(terminalPaymentRowColumns).
					AddRow("line-2", "pm-1", nil, "1", "OMR", nil, "pending", nil, nil, now, now)
				mock.ExpectQuery(`SELECT .* FROM terminal_payments WHERE payment_id = \?`).
					WithArgs("line-2").
					WillReturnRows(rows)
			},
			checkFunc: func(t *testing.T, tp *terminal_payment.TerminalPayment) {
				assert.Empty(t, tp.AFSTransactionID())
				assert.Empty(t, tp.OrderReference())
				assert.NotNil(t, tp.LastResponse())
				assert.Equal(t, terminal_payment.StatusPending, tp.Status())
			},
		},
		{
			name:      "異常系: 見つからない",
			paymentID: "missing",
			setupMock: func() {
				mock.ExpectQuery(`SELECT .* FROM terminal_payments`).
					WithArgs("missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantError: terminal_payment.ErrTerminalPaymentNotFound,
		},
		{
			name:      "異常系: 不正なステータス",
			paymentID: "line-3",
			setupMock: func() {
				rows := sqlmock.NewRows(terminalPaymentRowColumns).
					AddRow("line-3", "pm-1", nil, "1", "OMR", nil, "done", nil, nil, now, now)
				mock.ExpectQuery(`SELECT .* FROM terminal_payments`).
					WithArgs("line-3").
					WillReturnRows(rows)
			},
			wantError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()
			got, err := repo.FindByPaymentID(context.Background(), tt.paymentID)

			switch {
			case tt.wantError != nil:
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, got)
			case tt.checkFunc == nil:
				assert.Error(t, err)
				assert.Nil(t, got)
			default:
				require.NoError(t, err)
				tt.checkFunc(t, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTerminalPaymentRepository_FindByAFSTransactionID(t *testing.T) {
	repo, mock, closeDB := newTestTerminalPaymentRepository(t)
	defer closeDB()

	now := time.Now()

	t.Run("正常系: 最新の支払行を返す", func(t *testing.T) {
		rows := sqlmock.NewRows(terminalPaymentRowColumns).
			AddRow("line-1", "pm-1", nil, "2.000", "OMR", "line-1", "waiting", `{}`, nil, now, now)
		mock.ExpectQuery(`SELECT .* FROM terminal_payments\s+WHERE afs_transaction_id = \?\s+ORDER BY updated_at DESC\s+LIMIT 1`).
			WithArgs("line-1").
			WillReturnRows(rows)

		got, err := repo.FindByAFSTransactionID(context.Background(), "line-1")
		require.NoError(t, err)
		assert.True(t, got.IsInProgress())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("異常系: 壊れたJSON", func(t *testing.T) {
		rows := sqlmock.NewRows(terminalPaymentRowColumns).
			AddRow("line-2", "pm-1", nil, "2.000", "OMR", "line-2", "waiting", `{broken`, nil, now, now)
		mock.ExpectQuery(`SELECT .* FROM terminal_payments`).
			WithArgs("line-2").
			WillReturnRows(rows)

		got, err := repo.FindByAFSTransactionID(context.Background(), "line-2")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal last_response")
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("異常系: 見つからない", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM terminal_payments`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByAFSTransactionID(context.Background(), "missing")
		assert.ErrorIs(t, err, terminal_payment.ErrTerminalPaymentNotFound)
		assert.Nil(t, got)
	})
}
