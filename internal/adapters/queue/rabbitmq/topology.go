package rabbitmq

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeName = "texts"

// delayQueueName names the holding queue for jobs deferred by delay on queue.
func delayQueueName(queue string, delay time.Duration) string {
	return fmt.Sprintf("%s.delay.%d", queue, delay.Milliseconds())
}

// declare idempotently sets up the exchange, the queue and its binding.
func declare(ch *amqp.Channel, queue string) error {
	if err := ch.ExchangeDeclare(exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(queue, queue, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue, err)
	}

	return nil
}

// declareDelay sets up a queue whose messages expire after delay and are
// dead-lettered onto queue. Idle delay queues are removed by the broker.
func declareDelay(ch *amqp.Channel, queue string, delay time.Duration) (string, error) {
	name := delayQueueName(queue, delay)
	ms := delay.Milliseconds()
	args := amqp.Table{
		"x-message-ttl":             ms,
		"x-dead-letter-exchange":    exchangeName,
		"x-dead-letter-routing-key": queue,
		"x-expires":                 ms + time.Minute.Milliseconds(),
	}
	if _, err := ch.QueueDeclare(name, true, false, false, false, args); err != nil {
		return "", fmt.Errorf("declare delay queue %s: %w", name, err)
	}
	return name, nil
}
