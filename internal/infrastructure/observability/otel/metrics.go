package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// AFS端末へのSOAP呼び出し数
	TerminalCallCount metric.Int64Counter

	// AFS端末へのSOAP呼び出し時間
	TerminalCallDuration metric.Float64Histogram

	// 決済ワークフローの結果（success / waiting / polling / cancelled / error）
	PaymentOutcomeCount metric.Int64Counter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	terminalCallCount, err := meter.Int64Counter(
		"afs_terminal_calls_total",
		metric.WithDescription("Total number of SOAP calls to the AFS terminal service"),
	)
	if err != nil {
		return nil, err
	}

	terminalCallDuration, err := meter.Float64Histogram(
		"afs_terminal_call_duration_seconds",
		metric.WithDescription("AFS terminal SOAP call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	paymentOutcomeCount, err := meter.Int64Counter(
		"terminal_payment_outcomes_total",
		metric.WithDescription("Total number of terminal payment workflow outcomes"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		TerminalCallCount:    terminalCallCount,
		TerminalCallDuration: terminalCallDuration,
		PaymentOutcomeCount:  paymentOutcomeCount,
		RequestCount:         requestCount,
		ResponseTime:         responseTime,
		ErrorCount:           errorCount,
	}, nil
}

// RecordTerminalCall SOAP呼び出しを記録
// outcome は ok / http_error / transport_error / parse_error / not_found のいずれか
func (m *Metrics) RecordTerminalCall(ctx context.Context, operation, outcome string, duration float64) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.TerminalCallCount.Add(ctx, 1, attrs)
	m.TerminalCallDuration.Record(ctx, duration, attrs)
}

// RecordPaymentOutcome 決済ワークフローの結果を記録
func (m *Metrics) RecordPaymentOutcome(ctx context.Context, operation, status string) {
	m.PaymentOutcomeCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
