package terminal_payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTerminalPayment(t *testing.T) {
	tests := []struct {
		name       string
		paymentID  string
		amount     string
		wantAmount string
		wantError  error
	}{
		{name: "正常系: 小数点以下3桁の金額", paymentID: "line-1", amount: "10.500", wantAmount: "10.500"},
		{name: "正常系: 前後の空白は除去", paymentID: "line-1", amount: " 2.000 ", wantAmount: "2.000"},
		{name: "正常系: ゼロ", paymentID: "line-1", amount: "0", wantAmount: "0"},
		{name: "異常系: マイナス金額は返金", paymentID: "line-1", amount: "-1.000", wantError: ErrRefundNotSupported},
		{name: "異常系: 数値でない", paymentID: "line-1", amount: "ten", wantError: ErrInvalidAmount},
		{name: "異常系: 空の金額", paymentID: "line-1", amount: "", wantError: ErrInvalidAmount},
		{name: "異常系: 支払行IDが空", paymentID: "", amount: "1.000", wantError: ErrInvalidPaymentID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, err := NewTerminalPayment(tt.paymentID, "pm-1", tt.amount)

			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, tp)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.paymentID, tp.PaymentID())
			assert.Equal(t, "pm-1", tp.PaymentMethodID())
			assert.Equal(t, tt.wantAmount, tp.Amount())
			assert.Equal(t, DefaultCurrency, tp.Currency())
			assert.Equal(t, StatusPending, tp.Status())
			assert.NotNil(t, tp.LastResponse())
			assert.WithinDuration(t, time.Now(), tp.CreatedAt(), time.Second)
		})
	}
}

func TestTerminalPayment_Lifecycle(t *testing.T) {
	tp, err := NewTerminalPayment("line-1", "pm-1", "5.250")
	require.NoError(t, err)

	tp.SetOrderReference("Order 00001-001-0001")
	tp.SetOperatorID("cashier-1")
	tp.SetCurrency("")
	assert.Equal(t, "Order 00001-001-0001", tp.OrderReference())
	assert.Equal(t, "cashier-1", tp.OperatorID())
	assert.Equal(t, DefaultCurrency, tp.Currency())

	tp.Wait("line-1")
	assert.True(t, tp.IsInProgress())
	assert.Equal(t, "line-1", tp.AFSTransactionID())

	tp.RecordResponse(map[string]interface{}{"PosRespText": "APPROVAL"})
	tp.Complete("")
	assert.True(t, tp.IsCompleted())
	assert.False(t, tp.IsInProgress())
	assert.Equal(t, "line-1", tp.AFSTransactionID())
	assert.Equal(t, "APPROVAL", tp.LastResponse()["PosRespText"])
	assert.True(t, tp.Status().IsFinal())
}

func TestTerminalPayment_CancelAndFail(t *testing.T) {
	tp, err := NewTerminalPayment("line-2", "pm-1", "1")
	require.NoError(t, err)

	tp.Wait("line-2")
	tp.Cancel()
	assert.Equal(t, StatusCancelled, tp.Status())
	assert.False(t, tp.IsInProgress())

	tp.Fail()
	assert.Equal(t, StatusFailed, tp.Status())

	tp.RecordResponse(nil)
	assert.NotNil(t, tp.LastResponse())
}

func TestNewStatus(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Status
		wantError bool
	}{
		{name: "正常系: pending", input: "pending", want: StatusPending},
		{name: "正常系: waiting", input: "waiting", want: StatusWaiting},
		{name: "正常系: completed", input: "completed", want: StatusCompleted},
		{name: "正常系: failed", input: "failed", want: StatusFailed},
		{name: "正常系: cancelled", input: "cancelled", want: StatusCancelled},
		{name: "異常系: 不明なステータス", input: "done", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewStatus(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestIsApproved(t *testing.T) {
	tests := []struct {
		name              string
		posRespText       string
		webResponseStatus string
		want              bool
	}{
		{name: "正常系: 承認", posRespText: "APPROVAL 123456", webResponseStatus: "Success", want: true},
		{name: "正常系: 前後に文字列がある", posRespText: "00 APPROVAL", webResponseStatus: "Transaction Success.", want: true},
		{name: "異常系: 承認だがSuccessが無い", posRespText: "APPROVAL", webResponseStatus: "Pending", want: false},
		{name: "異常系: Successだが承認が無い", posRespText: "DECLINED", webResponseStatus: "Success", want: false},
		{name: "異常系: 大文字小文字が違う", posRespText: "approval", webResponseStatus: "success", want: false},
		{name: "異常系: 両方空", posRespText: "", webResponseStatus: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsApproved(tt.posRespText, tt.webResponseStatus))
		})
	}
}

func TestIsCancellationAccepted(t *testing.T) {
	assert.True(t, IsCancellationAccepted("Success"))
	assert.True(t, IsCancellationAccepted("Cancel Success"))
	assert.False(t, IsCancellationAccepted("Failed"))
	assert.False(t, IsCancellationAccepted(""))
}

func TestTerminalPayment_IsInProgressAt(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(*TerminalPayment)
		elapsed time.Duration
		ttl     time.Duration
		want    bool
	}{
		{name: "正常系: 期限内の応答待ち", prepare: func(tp *TerminalPayment) { tp.Wait("line-1") }, elapsed: time.Minute, ttl: 3 * time.Minute, want: true},
		{name: "正常系: 期限なし", prepare: func(tp *TerminalPayment) { tp.Wait("line-1") }, elapsed: time.Hour, ttl: 0, want: true},
		{name: "異常系: 期限切れの応答待ち", prepare: func(tp *TerminalPayment) { tp.Wait("line-1") }, elapsed: 5 * time.Minute, ttl: 3 * time.Minute, want: false},
		{name: "異常系: 失敗した支払行", prepare: func(tp *TerminalPayment) { tp.Wait("line-1"); tp.Fail() }, elapsed: 0, ttl: 3 * time.Minute, want: false},
		{name: "異常系: 未送信の支払行", prepare: func(tp *TerminalPayment) {}, elapsed: 0, ttl: 3 * time.Minute, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, err := NewTerminalPayment("line-1", "pm-1", "1.000")
			require.NoError(t, err)
			tt.prepare(tp)

			assert.Equal(t, tt.want, tp.IsInProgressAt(tp.UpdatedAt().Add(tt.elapsed), tt.ttl))
		})
	}
}

func TestIsDeclined(t *testing.T) {
	assert.True(t, IsDeclined("Failed"))
	assert.True(t, IsDeclined("Transaction Failed."))
	assert.False(t, IsDeclined("Success"))
	assert.False(t, IsDeclined("Waiting"))
	assert.False(t, IsDeclined(""))
}
