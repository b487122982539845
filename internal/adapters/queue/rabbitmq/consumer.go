package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"storekd-sms/internal/domain"
)

var errDeliveriesClosed = errors.New("rabbitmq deliveries channel closed")

// Consumer implements ports.JobConsumer using RabbitMQ.
type Consumer struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	prefetch int
	log      *zap.SugaredLogger
}

// ConsumerOption customises a Consumer.
type ConsumerOption func(*Consumer)

// WithPrefetch sets how many unacknowledged jobs the broker hands this worker. Default 1.
func WithPrefetch(n int) ConsumerOption {
	return func(c *Consumer) {
		if n > 0 {
			c.prefetch = n
		}
	}
}

// NewConsumer dials RabbitMQ and returns a Consumer.
func NewConsumer(amqpURL string, log *zap.SugaredLogger, opts ...ConsumerOption) (*Consumer, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	c := &Consumer{prefetch: 1, log: log}
	for _, opt := range opts {
		opt(c)
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	c.conn, c.channel = conn, ch
	return c, nil
}

// Consume declares queue, then calls handler for each job until ctx is cancelled.
// A job is acknowledged only if the handler returns nil; otherwise it is requeued.
func (c *Consumer) Consume(ctx context.Context, queue string, handler func(ctx context.Context, job domain.Job) error) error {
	if err := declare(c.channel, queue); err != nil {
		return err
	}

	tag := "text-worker-" + uuid.NewString()
	deliveries, err := c.channel.Consume(queue, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}
	c.log.Infow("consuming", "queue", queue, "consumer_tag", tag, "prefetch", c.prefetch)

	for {
		select {
		case <-ctx.Done():
			_ = c.channel.Cancel(tag, false)
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errDeliveriesClosed
			}
			c.deliver(ctx, d, handler)
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, d amqp.Delivery, handler func(ctx context.Context, job domain.Job) error) {
	var job domain.Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		c.log.Errorw("malformed job dropped", "delivery_tag", d.DeliveryTag, "error", err)
		c.settle(d.Nack(false, false), d)
		return
	}

	if err := handler(ctx, job); err != nil {
		c.log.Errorw("job requeued", "job_id", job.ID, "kind", job.Kind, "error", err)
		c.settle(d.Nack(false, true), d)
		return
	}
	c.settle(d.Ack(false), d)
}

func (c *Consumer) settle(err error, d amqp.Delivery) {
	if err != nil {
		c.log.Warnw("settle delivery", "delivery_tag", d.DeliveryTag, "error", err)
	}
}

// Close shuts down the channel and connection.
func (c *Consumer) Close() {
	c.channel.Close()
	c.conn.Close()
}
