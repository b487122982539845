package ports

import (
	"context"
	"time"

	"storekd-sms/internal/domain"
)

// JobQueue pushes queued textables onto a named queue.
type JobQueue interface {
	// Push makes the job available immediately. An empty queue selects the default queue.
	Push(ctx context.Context, queue string, job domain.Job) error

	// Later makes the job available once delay has elapsed.
	Later(ctx context.Context, queue string, delay time.Duration, job domain.Job) error
}

// JobConsumer delivers queued jobs to a handler.
type JobConsumer interface {
	// Consume blocks until ctx is cancelled or a fatal error occurs.
	// A job is acknowledged only when the handler returns nil.
	Consume(ctx context.Context, queue string, handler func(ctx context.Context, job domain.Job) error) error
}

// QueueFactory resolves a queue connection by name. An empty name selects the default connection.
type QueueFactory interface {
	Connection(name string) (JobQueue, error)
}
