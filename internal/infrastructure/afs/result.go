package afs

import (
	"errors"
	"strings"

	"afs-bridge/internal/infrastructure/afs/xmltree"
)

// 正規化結果の予約キー
const (
	KeyStatus   = "Status"
	KeyMessage  = "Message"
	KeyResponse = "Response"

	StatusError = "Error"
)

// 端末レスポンスの主要フィールド
const (
	FieldPosRespText       = "PosRespText"
	FieldWebResponseStatus = "WebResponseStatus"
)

var (
	// ErrXMLParse レスポンスがXMLとして解析できない
	ErrXMLParse = xmltree.ErrParse
	// ErrResultNotFound 結果要素もSOAP Bodyも見つからない
	ErrResultNotFound = xmltree.ErrNotFound
	// ErrHTTPStatus 2xx以外のHTTPステータス
	ErrHTTPStatus = errors.New("HTTP Error")
	// ErrTransport 接続・タイムアウト・TLSなどの通信エラー
	ErrTransport = errors.New("Network Error")
)

// Result 1回のSOAP呼び出しの正規化結果
// Err が nil でなければエラー形状（Status=Error, Message, 任意で Response）として扱う
type Result struct {
	Operation  Operation
	Data       xmltree.Node
	Err        error
	StatusCode int
	Response   string
}

// IsError エラー形状の結果かどうか
func (r *Result) IsError() bool {
	return r.Err != nil
}

// Message エラーメッセージを返す（成功時は空文字）
func (r *Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Field トップレベルのフィールドを文字列として返す
// エラー形状の場合は予約キーのみを返す
func (r *Result) Field(name string) (string, bool) {
	if r.IsError() {
		switch name {
		case KeyStatus:
			return StatusError, true
		case KeyMessage:
			return r.Message(), true
		case KeyResponse:
			return r.Response, r.isHTTPError()
		}
		return "", false
	}

	el, ok := r.Data.(*xmltree.Element)
	if !ok {
		return "", false
	}
	return el.StringField(name)
}

// FieldContains フィールドが存在し、markerを含むかどうか
// 欠落や入れ子の値は false
func (r *Result) FieldContains(name, marker string) bool {
	v, ok := r.Field(name)
	if !ok {
		return false
	}
	return strings.Contains(v, marker)
}

// Value 正規化結果をプレーンな値（map / slice / string）で返す
func (r *Result) Value() interface{} {
	if r.IsError() {
		m := map[string]interface{}{
			KeyStatus:  StatusError,
			KeyMessage: r.Message(),
		}
		if r.isHTTPError() {
			m[KeyResponse] = r.Response
		}
		return m
	}
	return xmltree.ToMap(r.Data)
}

// Map 正規化結果をmapで返す
// 結果が文字列に畳み込まれている場合は結果要素名をキーにする
func (r *Result) Map() map[string]interface{} {
	v := r.Value()
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{r.Operation.ResultTag(): v}
}

func (r *Result) isHTTPError() bool {
	return errors.Is(r.Err, ErrHTTPStatus)
}
