// Package messaging 图书目录事件发布
// 领域事件序列化为JSON后发布到RabbitMQ，发布调用经过熔断器保护
package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/circuitbreaker"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
	"github.com/xiebiao/bookcatalog/pkg/mq"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultPublishTimeout 单次发布超时
const DefaultPublishTimeout = 3 * time.Second

// MessagePublisher mq.Publisher中用到的方法
type MessagePublisher interface {
	Publish(ctx context.Context, msg mq.Message) error
	Exchange() string
}

// EventPublisher 领域事件发布器
type EventPublisher struct {
	publisher MessagePublisher
	breaker   *circuitbreaker.CircuitBreaker
	timeout   time.Duration
}

// NewEventPublisher 创建事件发布器
func NewEventPublisher(publisher MessagePublisher, breaker *circuitbreaker.CircuitBreaker) *EventPublisher {
	metrics.InitMetrics()
	return &EventPublisher{
		publisher: publisher,
		breaker:   breaker,
		timeout:   DefaultPublishTimeout,
	}
}

// NewBreaker 创建发布用熔断器，状态变化同步到circuit_breaker_state指标
func NewBreaker(name string) *circuitbreaker.CircuitBreaker {
	metrics.InitMetrics()

	cb := circuitbreaker.NewCircuitBreaker(name, circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
	})
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(circuitbreaker.StateClosed))

	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		zap.L().Warn("熔断器状态变化",
			zap.String("name", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	})
	return cb
}

// Publish 发布事件
// 事件在事务提交之后发布，请求结束（ctx取消）不影响发布
func (p *EventPublisher) Publish(ctx context.Context, evt book.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	msg := mq.Message{
		ID:         evt.ID,
		Type:       evt.Type,
		RoutingKey: evt.Type,
		Body:       body,
		Timestamp:  evt.OccurredAt,
	}

	err = p.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		return p.publisher.Publish(ctx, msg)
	})
	p.observe(evt.Type, err)
	return err
}

func (p *EventPublisher) observe(routingKey string, err error) {
	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case errors.Is(err, circuitbreaker.ErrOpenState):
		result = metrics.ResultRejected
	default:
		result = metrics.ResultFailure
	}

	metrics.CircuitBreakerRequests.WithLabelValues(p.breaker.Name(), result).Inc()
	metrics.MessagesPublishedTotal.WithLabelValues(p.publisher.Exchange(), routingKey, result).Inc()
}

// NoopPublisher 未启用消息队列时使用，事件只写调试日志
type NoopPublisher struct{}

// Publish 丢弃事件
func (NoopPublisher) Publish(_ context.Context, evt book.Event) error {
	zap.L().Debug("消息队列未启用，忽略事件",
		zap.String("type", evt.Type),
		zap.String("event_id", evt.ID),
	)
	return nil
}
