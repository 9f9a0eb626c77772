package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// QueueName 待发送邮件队列
const QueueName = "mail.outgoing"

// QueueSender 把邮件发布到 RabbitMQ，由 Consumer 异步投递
type QueueSender struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewQueueSender(url string) *QueueSender {
	return &QueueSender{url: url}
}

// channel 复用连接，断开后重新建立
func (s *QueueSender) channel() (*amqp.Channel, error) {
	if s.ch != nil && !s.ch.IsClosed() {
		return s.ch, nil
	}
	if s.conn == nil || s.conn.IsClosed() {
		conn, err := amqp.Dial(s.url)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}
		s.conn = conn
	}
	ch, err := s.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	s.ch = ch
	return ch, nil
}

func (s *QueueSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", QueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message to queue %s: %w", QueueName, err)
	}
	return nil
}

// Close 关闭连接
func (s *QueueSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn, s.ch = nil, nil
	return err
}

// errBadPayload 消息无法解析，不再重新入队
var errBadPayload = errors.New("bad mail payload")

// Consumer 从队列读取邮件并交给 Sender 投递
type Consumer struct {
	url      string
	delivery Sender
	logger   *zap.Logger
}

func NewConsumer(url string, delivery Sender, logger *zap.Logger) *Consumer {
	return &Consumer{url: url, delivery: delivery, logger: logger}
}

// Run 连接断开后按指数退避重连，直到 ctx 取消
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("mail consumer: dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("mail consumer: consume loop ended, reconnecting", zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		c.logger.Warn("mail consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

// acknowledger 即 amqp.Delivery 的确认方法
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	c.settle(&d, c.Deliver(ctx, d.Body))
}

// settle 成功时 ack，失败一律 nack 且不重新入队，避免同一条消息反复投递
// 用户可以通过重发确认码接口再次获取
func (c *Consumer) settle(d acknowledger, err error) {
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, errBadPayload):
		c.logger.Error("mail consumer: rejecting message", zap.Error(err))
		_ = d.Nack(false, false)
	default:
		c.logger.Error("mail consumer: delivery failed, dropping message", zap.Error(err))
		_ = d.Nack(false, false)
	}
}

// Deliver 解析一条队列消息并投递
func (c *Consumer) Deliver(ctx context.Context, body []byte) error {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("%w: no recipients", errBadPayload)
	}
	return c.delivery.Send(ctx, msg)
}
