package terminal_payment

import "strings"

// 端末レスポンスの判定に使う文字列
const (
	ApprovalMarker = "APPROVAL"
	SuccessMarker  = "Success"
	FailureMarker  = "Fail"
)

// IsApproved 端末が取引を承認したかどうか
// PosRespText に "APPROVAL"、WebResponseStatus に "Success" が含まれること
func IsApproved(posRespText, webResponseStatus string) bool {
	return strings.Contains(posRespText, ApprovalMarker) &&
		strings.Contains(webResponseStatus, SuccessMarker)
}

// IsCancellationAccepted 取消要求が受け付けられたかどうか
func IsCancellationAccepted(webResponseStatus string) bool {
	return strings.Contains(webResponseStatus, SuccessMarker)
}

// IsDeclined 端末が取引を確定的に拒否したかどうか
// WebResponseStatus に "Fail" が含まれること（処理中の応答は含まない）
func IsDeclined(webResponseStatus string) bool {
	return strings.Contains(webResponseStatus, FailureMarker)
}
