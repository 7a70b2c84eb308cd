// Package simulator AFS EcrComInterface の応答を返す手動テスト用のSOAPサーバー
package simulator

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"text/template"

	"github.com/labstack/echo/v4"

	"afs-bridge/internal/infrastructure/afs"
	otelinfra "afs-bridge/internal/infrastructure/observability/otel"
)

// SaleOutcome 販売要求への応答パターン
type SaleOutcome string

const (
	// SaleWaiting 端末で処理中として応答し、照会でN回目に承認する
	SaleWaiting SaleOutcome = "waiting"
	// SaleApprove 即時に承認する
	SaleApprove SaleOutcome = "approve"
	// SaleDecline 即時に拒否する
	SaleDecline SaleOutcome = "decline"
)

// 応答の文言
const (
	textApproval  = "APPROVAL 000000"
	textPending   = "PENDING"
	textDeclined  = "DECLINED"
	textCancelled = "CANCELLED"
	textNotFound  = "NO TRANSACTION"
	textBadKey    = "INVALID MERCHANT"

	statusSuccess = "Success"
	statusWaiting = "Waiting"
	statusFailed  = "Failed"
)

// Options シミュレーターの設定
type Options struct {
	SaleOutcome  SaleOutcome
	ApproveAfter int    // 承認までの照会回数
	SecureKey    string // 空でなければ一致しない要求を拒否する
}

// Simulator 参照番号ごとの照会回数を保持するAFS端末の代役
type Simulator struct {
	opts   Options
	logger *otelinfra.Logger

	mu      sync.Mutex
	pending map[string]int
}

// New 新しいSimulatorを作成
func New(opts Options, logger *otelinfra.Logger) *Simulator {
	if opts.SaleOutcome == "" {
		opts.SaleOutcome = SaleWaiting
	}
	if opts.ApproveAfter < 1 {
		opts.ApproveAfter = 1
	}
	return &Simulator{
		opts:    opts,
		logger:  logger,
		pending: make(map[string]int),
	}
}

// Register echoにSOAPエンドポイントを登録
func (s *Simulator) Register(e *echo.Echo) {
	e.POST("/*", s.handle)
}

// request 要求エンベロープのうち応答の判定に使う部分
type request struct {
	Body struct {
		Operation struct {
			XMLName xml.Name
			WebReq  struct {
				Config struct {
					SecureKey string `xml:"MerchantSecureKey"`
					TID       string `xml:"Tid"`
				} `xml:"Config"`
				Amount  string `xml:"EcrAmount"`
				Printer struct {
					ReferenceNumber string `xml:"ReferenceNumber"`
				} `xml:"Printer"`
			} `xml:"webReq"`
		} `xml:",any"`
	} `xml:"Body"`
}

func (s *Simulator) handle(c echo.Context) error {
	ctx := c.Request().Context()

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read body")
	}

	var req request
	if err := xml.Unmarshal(payload, &req); err != nil {
		s.logger.Warn(ctx, "Malformed SOAP request", map[string]interface{}{"error": err.Error()})
		return c.String(http.StatusBadRequest, "malformed SOAP request")
	}

	op := operationOf(c.Request().Header.Get("SOAPAction"), req.Body.Operation.XMLName.Local)
	reference := req.Body.Operation.WebReq.Printer.ReferenceNumber

	var posRespText, webStatus string
	if s.opts.SecureKey != "" && req.Body.Operation.WebReq.Config.SecureKey != s.opts.SecureKey {
		posRespText, webStatus = textBadKey, statusFailed
	} else {
		switch op {
		case afs.OperationSale:
			posRespText, webStatus = s.sale(reference)
		case afs.OperationEnquiry:
			posRespText, webStatus = s.enquiry(reference)
		case afs.OperationCancellation:
			posRespText, webStatus = s.cancel()
		default:
			s.logger.Warn(ctx, "Unknown SOAP action", map[string]interface{}{"operation": string(op)})
			return c.String(http.StatusInternalServerError, "unknown operation")
		}
	}

	s.logger.Info(ctx, "Answered terminal request", map[string]interface{}{
		"operation":           string(op),
		"tid":                 req.Body.Operation.WebReq.Config.TID,
		"amount":              req.Body.Operation.WebReq.Amount,
		"reference":           reference,
		"pos_resp_text":       posRespText,
		"web_response_status": webStatus,
	})

	body, err := renderResponse(op, posRespText, webStatus)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/xml; charset=utf-8", body)
}

func (s *Simulator) sale(reference string) (string, string) {
	switch s.opts.SaleOutcome {
	case SaleApprove:
		return textApproval, statusSuccess
	case SaleDecline:
		return textDeclined, statusFailed
	}
	s.mu.Lock()
	s.pending[reference] = 0
	s.mu.Unlock()
	return textPending, statusWaiting
}

func (s *Simulator) enquiry(reference string) (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, ok := s.pending[reference]
	if !ok {
		return textNotFound, statusFailed
	}
	count++
	if count >= s.opts.ApproveAfter {
		delete(s.pending, reference)
		return textApproval, statusSuccess
	}
	s.pending[reference] = count
	return textPending, statusWaiting
}

// cancel 処理中の取引をすべて取り消す（端末は同時に1件しか扱わない）
func (s *Simulator) cancel() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.pending)
	return textCancelled, statusSuccess
}

// operationOf SOAPActionヘッダー、無ければ本文の要素名から操作を判定
func operationOf(soapAction, element string) afs.Operation {
	action := strings.Trim(soapAction, `"`)
	if i := strings.LastIndex(action, "/"); i >= 0 {
		action = action[i+1:]
	}
	if action == "" {
		action = element
	}
	return afs.Operation(action)
}

var responseTemplate = template.Must(template.New("response").Funcs(template.FuncMap{
	"x": func(s string) string {
		var b strings.Builder
		_ = xml.EscapeText(&b, []byte(s))
		return b.String()
	},
}).Parse(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><{{.Operation}}Response xmlns="http://tempuri.org/"><{{.ResultTag}} xmlns:a="http://schemas.datacontract.org/2004/07/" xmlns:i="http://www.w3.org/2001/XMLSchema-instance"><a:PosRespText>{{x .PosRespText}}</a:PosRespText><a:WebResponseStatus>{{x .WebResponseStatus}}</a:WebResponseStatus></{{.ResultTag}}></{{.Operation}}Response></s:Body></s:Envelope>`))

func renderResponse(op afs.Operation, posRespText, webStatus string) ([]byte, error) {
	var buf bytes.Buffer
	err := responseTemplate.Execute(&buf, map[string]string{
		"Operation":         string(op),
		"ResultTag":         op.ResultTag(),
		"PosRespText":       posRespText,
		"WebResponseStatus": webStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render response: %w", err)
	}
	return buf.Bytes(), nil
}
