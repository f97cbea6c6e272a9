// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var root zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	root = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// Init 在服务启动时调用，为所有日志行附加服务名。
func Init(serviceName string) {
	root = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Logger 返回全局根 logger，用于没有请求上下文的场景（启动、关停）。
func Logger() *zerolog.Logger {
	return &root
}

// Ctx 返回一个绑定了当前追踪上下文的 logger。
// 如果 ctx 中存在有效的 Span，则日志行会带上 trace_id/span_id，
// 便于在 Jaeger 中按 TraceID 关联日志。
func Ctx(ctx context.Context) *zerolog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return &root
	}
	l := root.With().
		Str("trace_id", spanCtx.TraceID().String()).
		Str("span_id", spanCtx.SpanID().String()).
		Logger()
	return &l
}
