package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/metrics"
)

// LoggingInterceptor logs every RPC call and records its metrics.
// It logs the procedure name, user ID, duration, and any error codes/messages.
type LoggingInterceptor struct {
	metrics *metrics.Metrics
}

var _ connect.Interceptor = (*LoggingInterceptor)(nil)

// NewLoggingInterceptor creates the interceptor. m may be nil.
func NewLoggingInterceptor(m *metrics.Metrics) *LoggingInterceptor {
	return &LoggingInterceptor{metrics: m}
}

func (l *LoggingInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		start := time.Now()
		resp, err := next(ctx, req)
		l.observe(ctx, req.Spec().Procedure, start, err)
		return resp, err
	}
}

func (l *LoggingInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (l *LoggingInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		start := time.Now()
		err := next(ctx, conn)
		l.observe(ctx, conn.Spec().Procedure, start, err)
		return err
	}
}

func (l *LoggingInterceptor) observe(ctx context.Context, procedure string, start time.Time, err error) {
	elapsed := time.Since(start)
	userID := GetUserID(ctx)
	duration := elapsed.Milliseconds()

	code := "ok"
	if err != nil {
		code = connect.CodeOf(err).String()
	}
	l.metrics.ObserveRPC(procedure, code, elapsed)

	if err == nil {
		slog.Info("RPC ok",
			"procedure", procedure,
			"user_id", userID,
			"duration_ms", duration,
		)
		return
	}

	var connectErr *connect.Error
	if errors.As(err, &connectErr) && connectErr.Code() != connect.CodeInternal {
		slog.Warn("RPC error",
			"procedure", procedure,
			"code", connectErr.Code(),
			"error", connectErr.Message(),
			"user_id", userID,
			"duration_ms", duration,
		)
		return
	}
	slog.Error("RPC error",
		"procedure", procedure,
		"error", err,
		"user_id", userID,
		"duration_ms", duration,
	)
}
