package main

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
	"github.com/xiebiao/bookcatalog/pkg/mq"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// routingKeys 订阅的事件
var routingKeys = []string{"book.*", "author.*"}

// envelope 事件外层，payload按type再解码
type envelope struct {
	ID         string              `json:"id"`
	Type       string              `json:"type"`
	OccurredAt time.Time           `json:"occurred_at"`
	Payload    jsoniter.RawMessage `json:"payload"`
}

// eventLogger 把目录事件写入日志
type eventLogger struct {
	queue string
	log   *zap.Logger
}

func newEventLogger(queue string, log *zap.Logger) *eventLogger {
	metrics.InitMetrics()
	return &eventLogger{queue: queue, log: log}
}

// Handle 实现mq.Handler
// 消息体无法解析时返回error，由mq.Dispatch决定重投或丢弃
func (l *eventLogger) Handle(_ context.Context, msg mq.Message) (err error) {
	start := time.Now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultFailure
		}
		metrics.MessagesConsumedTotal.WithLabelValues(l.queue, result).Inc()
		metrics.MessageProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	var evt envelope
	if err := json.Unmarshal(msg.Body, &evt); err != nil {
		return fmt.Errorf("解析事件失败: %w", err)
	}

	fields := []zap.Field{
		zap.String("event_id", evt.ID),
		zap.String("type", evt.Type),
		zap.Time("occurred_at", evt.OccurredAt),
		zap.Bool("redelivered", msg.Redelivered),
	}

	switch evt.Type {
	case book.EventBookAdded, book.EventBookUpdated, book.EventBookRemoved:
		var p book.BookPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return fmt.Errorf("解析图书事件失败: %w", err)
		}
		fields = append(fields,
			zap.String("isbn", p.ISBN),
			zap.String("title", p.Title),
			zap.String("publisher", p.Publisher),
			zap.Strings("authors", p.Authors),
		)
	case book.EventAuthorRemoved:
		var p book.AuthorPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return fmt.Errorf("解析作者事件失败: %w", err)
		}
		fields = append(fields,
			zap.String("author", p.Name),
			zap.String("birth_date", p.BirthDate),
		)
	default:
		// 新增的事件类型不影响消费
		l.log.Warn("未知事件类型", fields...)
		return nil
	}

	l.log.Info("目录事件", fields...)
	return nil
}
