package terminal_payment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency 既定の通貨コード
const DefaultCurrency = "OMR"

// TerminalPayment AFS端末で処理するPOSの支払行
type TerminalPayment struct {
	paymentID        string // POSの支払行UUID
	paymentMethodID  string
	orderReference   string
	amount           string // POSから受け取った文字列をそのまま保持
	currency         string
	afsTransactionID string // Sale/Enquiryの参照番号
	status           Status
	lastResponse     map[string]interface{}
	operatorID       string
	createdAt        time.Time
	updatedAt        time.Time
}

// ParseAmount 金額文字列を検証する
// マイナスは返金として扱い ErrRefundNotSupported を返す
func ParseAmount(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrRefundNotSupported
	}
	return d, nil
}

// NewTerminalPayment 新しいTerminalPaymentエンティティを作成
func NewTerminalPayment(paymentID, paymentMethodID, amount string) (*TerminalPayment, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, ErrInvalidPaymentID
	}
	if _, err := ParseAmount(amount); err != nil {
		return nil, err
	}

	now := time.Now()
	return &TerminalPayment{
		paymentID:       paymentID,
		paymentMethodID: paymentMethodID,
		amount:          strings.TrimSpace(amount),
		currency:        DefaultCurrency,
		status:          StatusPending,
		lastResponse:    make(map[string]interface{}),
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructTerminalPayment 永続化された値からTerminalPaymentを復元
func ReconstructTerminalPayment(
	paymentID, paymentMethodID, orderReference, amount, currency, afsTransactionID string,
	status Status,
	lastResponse map[string]interface{},
	operatorID string,
	createdAt, updatedAt time.Time,
) *TerminalPayment {
	if lastResponse == nil {
		lastResponse = make(map[string]interface{})
	}
	return &TerminalPayment{
		paymentID:        paymentID,
		paymentMethodID:  paymentMethodID,
		orderReference:   orderReference,
		amount:           amount,
		currency:         currency,
		afsTransactionID: afsTransactionID,
		status:           status,
		lastResponse:     lastResponse,
		operatorID:       operatorID,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// PaymentID 支払行IDを返す
func (tp *TerminalPayment) PaymentID() string {
	return tp.paymentID
}

// PaymentMethodID 支払方法IDを返す
func (tp *TerminalPayment) PaymentMethodID() string {
	return tp.paymentMethodID
}

// OrderReference 注文参照を返す
func (tp *TerminalPayment) OrderReference() string {
	return tp.orderReference
}

// Amount 金額を返す
func (tp *TerminalPayment) Amount() string {
	return tp.amount
}

// Currency 通貨コードを返す
func (tp *TerminalPayment) Currency() string {
	return tp.currency
}

// AFSTransactionID AFS取引IDを返す
func (tp *TerminalPayment) AFSTransactionID() string {
	return tp.afsTransactionID
}

// Status ステータスを返す
func (tp *TerminalPayment) Status() Status {
	return tp.status
}

// LastResponse 最後の端末レスポンスを返す
func (tp *TerminalPayment) LastResponse() map[string]interface{} {
	return tp.lastResponse
}

// OperatorID 操作者IDを返す
func (tp *TerminalPayment) OperatorID() string {
	return tp.operatorID
}

// CreatedAt 作成日時を返す
func (tp *TerminalPayment) CreatedAt() time.Time {
	return tp.createdAt
}

// UpdatedAt 更新日時を返す
func (tp *TerminalPayment) UpdatedAt() time.Time {
	return tp.updatedAt
}

// SetOrderReference 注文参照を設定
func (tp *TerminalPayment) SetOrderReference(ref string) {
	tp.orderReference = ref
	tp.updatedAt = time.Now()
}

// SetCurrency 通貨コードを設定（空なら既定値）
func (tp *TerminalPayment) SetCurrency(currency string) {
	if strings.TrimSpace(currency) == "" {
		currency = DefaultCurrency
	}
	tp.currency = currency
	tp.updatedAt = time.Now()
}

// SetOperatorID 操作者IDを設定
func (tp *TerminalPayment) SetOperatorID(operatorID string) {
	tp.operatorID = operatorID
	tp.updatedAt = time.Now()
}

// RecordResponse 端末レスポンスを記録
func (tp *TerminalPayment) RecordResponse(response map[string]interface{}) {
	if response == nil {
		response = make(map[string]interface{})
	}
	tp.lastResponse = response
	tp.updatedAt = time.Now()
}

// Wait 端末の応答待ちにする
func (tp *TerminalPayment) Wait(afsTransactionID string) {
	tp.afsTransactionID = afsTransactionID
	tp.status = StatusWaiting
	tp.updatedAt = time.Now()
}

// Complete 承認済みにする
func (tp *TerminalPayment) Complete(afsTransactionID string) {
	if afsTransactionID != "" {
		tp.afsTransactionID = afsTransactionID
	}
	tp.status = StatusCompleted
	tp.updatedAt = time.Now()
}

// Fail 失敗にする
func (tp *TerminalPayment) Fail() {
	tp.status = StatusFailed
	tp.updatedAt = time.Now()
}

// Cancel 取消済みにする
func (tp *TerminalPayment) Cancel() {
	tp.status = StatusCancelled
	tp.updatedAt = time.Now()
}

// IsInProgress 端末で処理中かどうか
func (tp *TerminalPayment) IsInProgress() bool {
	return tp.status == StatusWaiting
}

// IsInProgressAt now の時点で処理中とみなすかどうか
// 最後の更新から ttl を過ぎた応答待ちは放棄されたものとして扱う（ttl が0以下なら期限なし）
func (tp *TerminalPayment) IsInProgressAt(now time.Time, ttl time.Duration) bool {
	if !tp.IsInProgress() {
		return false
	}
	return ttl <= 0 || now.Sub(tp.updatedAt) < ttl
}

// IsCompleted 承認済みかどうか
func (tp *TerminalPayment) IsCompleted() bool {
	return tp.status == StatusCompleted
}
