package payment_method

import (
	"strings"
	"time"
)

// Terminal 決済端末の種別
type Terminal string

const (
	TerminalAFS Terminal = "afs" // AFS 決済端末
)

// String 文字列表現を返す
func (t Terminal) String() string {
	return string(t)
}

// NewTerminal 文字列からTerminalを作成
func NewTerminal(s string) (Terminal, error) {
	switch Terminal(s) {
	case TerminalAFS:
		return TerminalAFS, nil
	default:
		return "", ErrUnsupportedTerminal
	}
}

// PaymentMethod POSの支払方法（AFS端末の設定を保持）
type PaymentMethod struct {
	id        string
	name      string
	terminal  Terminal
	tid       string
	mid       string
	username  string
	fullName  string
	secureKey string // 書き込み専用。APIレスポンスには含めない
	testMode  bool
	createdAt time.Time
	updatedAt time.Time
}

// NewPaymentMethod 新しいPaymentMethodエンティティを作成
func NewPaymentMethod(id, name string) (*PaymentMethod, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidPaymentMethod
	}
	now := time.Now()
	return &PaymentMethod{
		id:        id,
		name:      name,
		terminal:  TerminalAFS,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructPaymentMethod 永続化された値からPaymentMethodを復元
func ReconstructPaymentMethod(
	id, name string,
	terminal Terminal,
	tid, mid, username, fullName, secureKey string,
	testMode bool,
	createdAt, updatedAt time.Time,
) *PaymentMethod {
	return &PaymentMethod{
		id:        id,
		name:      name,
		terminal:  terminal,
		tid:       tid,
		mid:       mid,
		username:  username,
		fullName:  fullName,
		secureKey: secureKey,
		testMode:  testMode,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID IDを返す
func (pm *PaymentMethod) ID() string {
	return pm.id
}

// Name 名称を返す
func (pm *PaymentMethod) Name() string {
	return pm.name
}

// Terminal 端末種別を返す
func (pm *PaymentMethod) Terminal() Terminal {
	return pm.terminal
}

// TID 端末IDを返す
func (pm *PaymentMethod) TID() string {
	return pm.tid
}

// MID 加盟店IDを返す
func (pm *PaymentMethod) MID() string {
	return pm.mid
}

// Username AFSユーザー名を返す
func (pm *PaymentMethod) Username() string {
	return pm.username
}

// FullName AFSユーザー氏名を返す
func (pm *PaymentMethod) FullName() string {
	return pm.fullName
}

// SecureKey 加盟店セキュアキーを返す
func (pm *PaymentMethod) SecureKey() string {
	return pm.secureKey
}

// HasSecureKey セキュアキーが設定されているかどうか
func (pm *PaymentMethod) HasSecureKey() bool {
	return strings.TrimSpace(pm.secureKey) != ""
}

// TestMode テストモードかどうかを返す
func (pm *PaymentMethod) TestMode() bool {
	return pm.testMode
}

// CreatedAt 作成日時を返す
func (pm *PaymentMethod) CreatedAt() time.Time {
	return pm.createdAt
}

// UpdatedAt 更新日時を返す
func (pm *PaymentMethod) UpdatedAt() time.Time {
	return pm.updatedAt
}

// Rename 名称を変更
func (pm *PaymentMethod) Rename(name string) {
	pm.name = name
	pm.updatedAt = time.Now()
}

// ConfigureTerminal 端末の識別情報を設定
func (pm *PaymentMethod) ConfigureTerminal(tid, mid, username, fullName string) {
	pm.tid = strings.TrimSpace(tid)
	pm.mid = strings.TrimSpace(mid)
	pm.username = strings.TrimSpace(username)
	pm.fullName = strings.TrimSpace(fullName)
	pm.updatedAt = time.Now()
}

// SetSecureKey セキュアキーを設定
// 空文字の場合は既存の値を維持する
func (pm *PaymentMethod) SetSecureKey(secureKey string) {
	if strings.TrimSpace(secureKey) == "" {
		return
	}
	pm.secureKey = secureKey
	pm.updatedAt = time.Now()
}

// SetTestMode テストモードを設定
func (pm *PaymentMethod) SetTestMode(testMode bool) {
	pm.testMode = testMode
	pm.updatedAt = time.Now()
}

// IsAFSConfigured AFS端末への接続に必要な情報がそろっているか
// MID, TID, ユーザー名, セキュアキーがすべて空白以外であること
func (pm *PaymentMethod) IsAFSConfigured() bool {
	if pm.terminal != TerminalAFS {
		return false
	}
	for _, v := range []string{pm.mid, pm.tid, pm.username, pm.secureKey} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// ServiceURL 接続先エンドポイントを選択（テストモードならテスト用）
func (pm *PaymentMethod) ServiceURL(productionURL, testURL string) string {
	if pm.testMode && testURL != "" {
		return testURL
	}
	return productionURL
}
