package book

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

const tracerName = "bookcatalog/application/book"

// EventPublisher 事件发布端口
// 由messaging.EventPublisher或messaging.NoopPublisher实现
type EventPublisher interface {
	Publish(ctx context.Context, evt book.Event) error
}

// begin 开始一次目录操作:创建Span并在结束时记录指标
//
//	ctx, finish := begin(ctx, "add_book", attribute.String("isbn", isbn))
//	defer func() { finish(err) }()
func begin(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "catalog."+operation, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		tracing.End(span, err)
		metrics.ObserveOperation(operation, start, err)
	}
}

// publish 发布事件,失败只记录日志
func publish(ctx context.Context, events EventPublisher, evt book.Event) {
	if err := events.Publish(ctx, evt); err != nil {
		zap.L().Warn("发布目录事件失败",
			zap.String("type", evt.Type),
			zap.String("event_id", evt.ID),
			zap.String("trace_id", tracing.ExtractTraceID(ctx)),
			zap.Error(err),
		)
	}
}
