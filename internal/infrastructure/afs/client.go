package afs

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"afs-bridge/internal/infrastructure/afs/xmltree"
	otelinfra "afs-bridge/internal/infrastructure/observability/otel"
)

const (
	// DefaultServiceURL 本番のAFS EcrComInterfaceエンドポイント
	DefaultServiceURL = "https://ereceiptom.afs.com.bh/Ecr.Om.Abo/EcrComInterface.svc"
	// DefaultTimeout 1回のSOAP呼び出しのタイムアウト
	DefaultTimeout = 45 * time.Second

	contentType = "text/xml; charset=utf-8"
)

// Credentials 端末の認証情報（クライアント生成後は不変）
type Credentials struct {
	ServiceURL string
	TID        string
	MID        string
	SecureKey  string
}

// Client AFS端末サービスのSOAPクライアント
// 認証情報以外の状態を持たないため、複数のgoroutineから同時に使用できる
type Client struct {
	creds      Credentials
	httpClient *http.Client
	logger     *otelinfra.Logger
	metrics    *otelinfra.Metrics
	tracer     trace.Tracer
}

// Option Clientのオプション
type Option func(*Client)

// WithHTTPClient HTTPクライアントを差し替える
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger ロガーを設定
func WithLogger(logger *otelinfra.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics メトリクスを設定
func WithMetrics(metrics *otelinfra.Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// NewHTTPClient サーバー証明書を検証し、otelhttpで計装したHTTPクライアントを作成
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}

	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(transport),
	}
}

// NewClient 新しいClientを作成
func NewClient(creds Credentials, opts ...Option) *Client {
	if creds.ServiceURL == "" {
		creds.ServiceURL = DefaultServiceURL
	}

	c := &Client{
		creds:  creds,
		logger: otelinfra.NewNopLogger(),
		tracer: otel.Tracer("afs-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = NewHTTPClient(DefaultTimeout)
	}
	return c
}

// ServiceURL 接続先エンドポイントを返す
func (c *Client) ServiceURL() string {
	return c.creds.ServiceURL
}

// SendSale 販売（Sale）を端末に要求する
// amount と invoiceNumber は書き換えずにそのまま送信される
func (c *Client) SendSale(ctx context.Context, amount, invoiceNumber string) *Result {
	return c.call(ctx, saleEnvelope(c.creds, amount, invoiceNumber))
}

// SendEnquiry 参照番号で取引状態を照会する（EnquiryByRef）
func (c *Client) SendEnquiry(ctx context.Context, referenceNumber string) *Result {
	return c.call(ctx, enquiryEnvelope(c.creds, referenceNumber))
}

// SendCancellation 端末で進行中の操作を取り消す（RequestCancellation）
// 完了済み取引の取消ではない
func (c *Client) SendCancellation(ctx context.Context) *Result {
	return c.call(ctx, cancellationEnvelope(c.creds))
}

// call エンベロープを送信し、レスポンスを正規化する
// 失敗はすべてエラー形状のResultとして返す
func (c *Client) call(ctx context.Context, data envelopeData) *Result {
	op := data.Operation

	ctx, span := c.tracer.Start(ctx, "afs."+string(op))
	defer span.End()
	span.SetAttributes(
		attribute.String("afs.operation", string(op)),
		attribute.String("afs.tid", c.creds.TID),
	)

	start := time.Now()
	result := c.roundTrip(ctx, data)
	duration := time.Since(start)

	outcome := outcomeOf(result)
	if c.metrics != nil {
		c.metrics.RecordTerminalCall(ctx, string(op), outcome, duration.Seconds())
	}

	fields := map[string]interface{}{
		"operation":   string(op),
		"status_code": result.StatusCode,
		"duration_ms": duration.Milliseconds(),
		"outcome":     outcome,
	}
	if result.IsError() {
		span.RecordError(result.Err)
		span.SetStatus(otelcodes.Error, result.Message())
		c.logger.Warn(ctx, "AFS terminal call failed", withError(fields, result.Err))
	} else {
		c.logger.Debug(ctx, "AFS terminal call completed", fields)
	}
	span.SetAttributes(attribute.Int("http.status_code", result.StatusCode))

	return result
}

func (c *Client) roundTrip(ctx context.Context, data envelopeData) *Result {
	op := data.Operation
	result := &Result{Operation: op}

	body, err := renderEnvelope(data)
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrTransport, err)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.creds.ServiceURL, bytes.NewReader(body))
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrTransport, err)
		return result
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("SOAPAction", op.SOAPAction())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrTransport, err)
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrTransport, err)
		return result
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Err = fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
		result.Response = string(payload)
		return result
	}

	node, err := xmltree.Normalize(payload, op.ResultTag())
	if err != nil {
		result.Err = err
		return result
	}
	result.Data = node
	return result
}

func outcomeOf(r *Result) string {
	switch {
	case r.Err == nil:
		return "ok"
	case errors.Is(r.Err, ErrHTTPStatus):
		return "http_error"
	case errors.Is(r.Err, ErrXMLParse):
		return "parse_error"
	case errors.Is(r.Err, ErrResultNotFound):
		return "not_found"
	default:
		return "transport_error"
	}
}

func withError(fields map[string]interface{}, err error) map[string]interface{} {
	fields["error"] = err.Error()
	return fields
}
