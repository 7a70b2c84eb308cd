package terminal_payment

import "fmt"

// Status 端末決済のステータス
type Status string

const (
	StatusPending   Status = "pending"   // 送信前
	StatusWaiting   Status = "waiting"   // 端末の応答待ち
	StatusCompleted Status = "completed" // 承認済み
	StatusFailed    Status = "failed"    // 失敗
	StatusCancelled Status = "cancelled" // 取消済み
)

// String 文字列表現を返す
func (s Status) String() string {
	return string(s)
}

// NewStatus 文字列からStatusを作成
func NewStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusWaiting, StatusCompleted, StatusFailed, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("invalid terminal payment status: %s", s)
	}
}

// IsFinal これ以上変化しないステータスかどうか
func (s Status) IsFinal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}
