// Package mq RabbitMQ发布/消费封装
//
// 拓扑：
//
//	Publisher ──▶ Exchange(topic) ──routing key──▶ Queue ──▶ Consumer
//
// 图书目录发布book.added、book.updated、book.removed、author.removed事件，
// eventlog消费者用"book.*"、"author.*"绑定队列。
package mq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Message 一条事件消息
// Body由调用方序列化（JSON），ID用于消费端去重
type Message struct {
	ID          string
	Type        string
	RoutingKey  string
	Body        []byte
	Timestamp   time.Time
	Redelivered bool
}

// channel amqp.Channel中发布用到的方法
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher 消息发布者
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
}

// NewPublisher 连接RabbitMQ并声明Exchange（持久化）
func NewPublisher(url, exchange, exchangeType string) (*Publisher, error) {
	conn, ch, err := dial(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	zap.L().Info("消息发布者已创建",
		zap.String("exchange", exchange),
		zap.String("type", exchangeType),
	)

	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Exchange 发布目标Exchange
func (p *Publisher) Exchange() string {
	return p.exchange
}

// Publish 发布消息
// 消息持久化（DeliveryMode=Persistent），ContentType固定为application/json
func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	err := p.channel.PublishWithContext(ctx,
		p.exchange,
		msg.RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    msg.ID,
			Type:         msg.Type,
			Body:         msg.Body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    ts,
		},
	)
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	zap.L().Debug("消息已发布",
		zap.String("routing_key", msg.RoutingKey),
		zap.String("message_id", msg.ID),
	)
	return nil
}

// Close 关闭Channel和连接
func (p *Publisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Handler 消息处理函数，返回error时消息会被Nack
type Handler func(ctx context.Context, msg Message) error

// Consumer 消息消费者
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewConsumer 声明Exchange、Queue并按routingKeys绑定（支持*、#通配符）
func NewConsumer(url, exchange, exchangeType, queue string, routingKeys []string) (*Consumer, error) {
	conn, ch, err := dial(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(
		queue,
		true,  // Durable
		false, // AutoDelete
		false, // Exclusive
		false, // NoWait
		nil,
	)
	if err != nil {
		closeAll(ch, conn)
		return nil, fmt.Errorf("声明Queue失败: %w", err)
	}

	for _, key := range routingKeys {
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			closeAll(ch, conn)
			return nil, fmt.Errorf("绑定Queue失败: %w", err)
		}
	}

	zap.L().Info("消息消费者已创建",
		zap.String("queue", q.Name),
		zap.Strings("routing_keys", routingKeys),
	)

	return &Consumer{conn: conn, channel: ch, queue: q.Name}, nil
}

// Queue 队列名称
func (c *Consumer) Queue() string {
	return c.queue
}

// Consume 阻塞消费直到ctx取消
// 手动确认，每次只预取1条
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("设置Qos失败: %w", err)
	}

	deliveries, err := c.channel.Consume(
		c.queue,
		"",    // Consumer标签（自动生成）
		false, // AutoAck
		false, // Exclusive
		false, // NoLocal
		false, // NoWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("开始消费失败: %w", err)
	}

	zap.L().Info("开始消费消息", zap.String("queue", c.queue))
	return Dispatch(ctx, deliveries, handler)
}

// Dispatch 把投递逐条交给handler并确认
// 处理失败：首次投递重新入队，重复投递仍失败则丢弃，避免毒消息无限循环
func Dispatch(ctx context.Context, deliveries <-chan amqp.Delivery, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("消息Channel已关闭")
			}

			msg := Message{
				ID:          d.MessageId,
				Type:        d.Type,
				RoutingKey:  d.RoutingKey,
				Body:        d.Body,
				Timestamp:   d.Timestamp,
				Redelivered: d.Redelivered,
			}

			if err := handler(ctx, msg); err != nil {
				requeue := !d.Redelivered
				zap.L().Warn("消息处理失败",
					zap.String("routing_key", d.RoutingKey),
					zap.String("message_id", d.MessageId),
					zap.Bool("requeue", requeue),
					zap.Error(err),
				)
				_ = d.Nack(false, requeue)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Close 关闭Channel和连接
func (c *Consumer) Close() error {
	closeAll(c.channel, c.conn)
	return nil
}

// dial 建立连接、Channel并声明Exchange
func dial(url, exchange, exchangeType string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		exchangeType,
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,
	)
	if err != nil {
		closeAll(ch, conn)
		return nil, nil, fmt.Errorf("声明Exchange失败: %w", err)
	}
	return conn, ch, nil
}

func closeAll(ch *amqp.Channel, conn *amqp.Connection) {
	if ch != nil {
		_ = ch.Close()
	}
	if conn != nil {
		_ = conn.Close()
	}
}
