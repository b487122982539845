package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"storekd-sms/internal/domain"
)

// Publisher implements ports.JobQueue using RabbitMQ.
type Publisher struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	defaultQueue string

	mu       sync.Mutex
	declared map[string]bool
}

// NewPublisher dials RabbitMQ and declares the default queue.
func NewPublisher(amqpURL, defaultQueue string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(ch, defaultQueue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:         conn,
		channel:      ch,
		defaultQueue: defaultQueue,
		declared:     map[string]bool{defaultQueue: true},
	}, nil
}

// Push publishes job to queue through the texts exchange.
func (p *Publisher) Push(ctx context.Context, queue string, job domain.Job) error {
	if queue == "" {
		queue = p.defaultQueue
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(queue); err != nil {
		return err
	}
	return p.publish(ctx, exchangeName, queue, job)
}

// Later publishes job to a delay queue that dead-letters it onto queue once delay has elapsed.
func (p *Publisher) Later(ctx context.Context, queue string, delay time.Duration, job domain.Job) error {
	if delay <= 0 {
		return p.Push(ctx, queue, job)
	}
	if queue == "" {
		queue = p.defaultQueue
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(queue); err != nil {
		return err
	}
	holding, err := declareDelay(p.channel, queue, delay)
	if err != nil {
		return err
	}
	return p.publish(ctx, "", holding, job)
}

// Close cleanly shuts down the channel and connection.
func (p *Publisher) Close() {
	p.channel.Close()
	p.conn.Close()
}

func (p *Publisher) ensure(queue string) error {
	if p.declared[queue] {
		return nil
	}
	if err := declare(p.channel, queue); err != nil {
		return err
	}
	p.declared[queue] = true
	return nil
}

func (p *Publisher) publish(ctx context.Context, exchange, key string, job domain.Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	return p.channel.PublishWithContext(
		ctx,
		exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    job.ID.String(),
			Type:         job.Kind,
			Timestamp:    job.CreatedAt,
			Body:         body,
		},
	)
}
