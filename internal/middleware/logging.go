package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinic-scheduler/internal/metrics"
)

// Observe logs every RPC and records its code and latency. It sits first in
// the chain so rejected calls are counted too.
func Observe(log *zap.Logger, m *metrics.Collector) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		elapsed := time.Since(start)
		code := status.Code(err)

		if m != nil {
			m.RPCTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
			m.RPCDuration.WithLabelValues(info.FullMethod).Observe(elapsed.Seconds())
		}

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("elapsed", elapsed),
		}
		if id := DoctorID(ctx); id != "" {
			fields = append(fields, zap.String("doctor_id", id))
		}
		switch code {
		case codes.OK:
			log.Debug("rpc", fields...)
		case codes.Internal, codes.Unavailable, codes.Unknown:
			log.Error("rpc", append(fields, zap.Error(err))...)
		default:
			log.Info("rpc", append(fields, zap.String("error", status.Convert(err).Message()))...)
		}
		return resp, err
	}
}
