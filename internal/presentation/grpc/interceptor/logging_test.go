package interceptor

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	otelinfra "afs-bridge/internal/infrastructure/observability/otel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoggingInterceptor(t *testing.T) {
	tests := []struct {
		name        string
		handlerErr  error
		wantLevel   string
		wantMessage string
		wantCode    string
	}{
		{
			name:        "正常系: 成功ログ",
			wantLevel:   "info",
			wantMessage: "gRPC call completed",
			wantCode:    "OK",
		},
		{
			name:        "異常系: 失敗ログ",
			handlerErr:  status.Error(codes.NotFound, "payment method not found"),
			wantLevel:   "warn",
			wantMessage: "gRPC call failed",
			wantCode:    "NotFound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := otelinfra.NewLoggerWithWriter(noop.NewTracerProvider().Tracer("test"), &buf)
			metrics, err := otelinfra.NewMetrics("test")
			require.NoError(t, err)

			interceptor := LoggingInterceptor(logger, metrics)
			info := &grpc.UnaryServerInfo{FullMethod: "/afsbridge.v1.TerminalService/CancelPayment"}
			ctx := context.WithValue(context.Background(), operatorIDKey{}, "cashier-01")

			_, err = interceptor(ctx, nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, tt.handlerErr
			})
			assert.Equal(t, tt.handlerErr, err)

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.wantMessage, entry["message"])

			fields, ok := entry["fields"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, info.FullMethod, fields["method"])
			assert.Equal(t, tt.wantCode, fields["grpc_code"])
			assert.Equal(t, "cashier-01", fields["operator_id"])
		})
	}
}
