package interceptor

import (
	"context"
	"time"

	otelinfra "afs-bridge/internal/infrastructure/observability/otel"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor 呼び出しごとに完了ログとメトリクスを記録するインターセプター
func LoggingInterceptor(logger *otelinfra.Logger, metrics *otelinfra.Metrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		elapsed := time.Since(start)
		code := status.Code(err)
		fields := map[string]interface{}{
			"method":      info.FullMethod,
			"grpc_code":   code.String(),
			"duration_ms": elapsed.Milliseconds(),
		}
		if operatorID, ok := OperatorIDFromContext(ctx); ok {
			fields["operator_id"] = operatorID
		}

		if metrics != nil {
			metrics.RecordRequest(ctx, "GRPC", info.FullMethod)
			metrics.RecordResponseTime(ctx, "GRPC", info.FullMethod, elapsed.Seconds())
		}
		if err != nil {
			if metrics != nil {
				metrics.RecordError(ctx, "grpc_"+code.String())
			}
			fields["error"] = err.Error()
			logger.Warn(ctx, "gRPC call failed", fields)
			return resp, err
		}

		logger.Info(ctx, "gRPC call completed", fields)
		return resp, nil
	}
}
