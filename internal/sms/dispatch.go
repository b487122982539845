package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storekd-sms/internal/domain"
	"storekd-sms/internal/metrics"
	"storekd-sms/internal/ports"
)

// Factory resolves a Texter by name. An empty name selects the default texter.
type Factory interface {
	Texter(name string) (*Texter, error)
}

// SendTextable builds t and sends it through the texter it names.
func SendTextable(ctx context.Context, f Factory, t Textable) (domain.FailureSet, error) {
	if !isTextable(t) {
		return nil, domain.ErrDispatchType
	}
	if err := t.Build(); err != nil {
		return nil, fmt.Errorf("build %T: %w", t, err)
	}

	base := t.text()
	texter, err := f.Texter(base.TexterName)
	if err != nil {
		return nil, err
	}
	return texter.SendRaw(ctx, base.Body, base.overlay)
}

// QueueTextable serialises t into a Job and pushes it onto its queue.
// A textable carrying a delay is deferred instead.
func QueueTextable(ctx context.Context, queues ports.QueueFactory, kinds *Kinds, t Textable) error {
	if !isTextable(t) {
		return domain.ErrDispatchType
	}
	if d := t.text().QueueDelay; d > 0 {
		return LaterTextable(ctx, queues, kinds, d, t)
	}

	conn, job, err := prepare(queues, kinds, t)
	if err != nil {
		return err
	}
	if err := conn.Push(ctx, job.Queue, job); err != nil {
		return fmt.Errorf("push %s: %w", job.Kind, err)
	}
	metrics.Jobs.WithLabelValues(job.Kind, metrics.OutcomeQueued).Inc()
	return nil
}

// LaterTextable serialises t into a Job that becomes available after delay.
func LaterTextable(ctx context.Context, queues ports.QueueFactory, kinds *Kinds, delay time.Duration, t Textable) error {
	if !isTextable(t) {
		return domain.ErrDispatchType
	}

	conn, job, err := prepare(queues, kinds, t)
	if err != nil {
		return err
	}
	if err := conn.Later(ctx, job.Queue, delay, job); err != nil {
		return fmt.Errorf("schedule %s: %w", job.Kind, err)
	}
	metrics.Jobs.WithLabelValues(job.Kind, metrics.OutcomeQueued).Inc()
	return nil
}

// NewQueuedJob wraps t in a Job. Tries and timeout are only recorded when t declares them.
func NewQueuedJob(kinds *Kinds, t Textable) (domain.Job, error) {
	kind, err := kinds.KindOf(t)
	if err != nil {
		return domain.Job{}, err
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return domain.Job{}, fmt.Errorf("encode %s: %w", kind, err)
	}

	base := t.text()
	job := domain.Job{
		ID:         uuid.New(),
		Kind:       kind,
		Payload:    payload,
		Texter:     base.TexterName,
		Connection: base.ConnectionName,
		Queue:      base.QueueName,
		CreatedAt:  time.Now().UTC(),
	}
	if r, ok := t.(Retryable); ok {
		tries := r.Tries()
		job.Tries = &tries
	}
	if tl, ok := t.(TimeLimited); ok {
		timeout := int(tl.Timeout() / time.Second)
		job.TimeoutSeconds = &timeout
	}
	return job, nil
}

func prepare(queues ports.QueueFactory, kinds *Kinds, t Textable) (ports.JobQueue, domain.Job, error) {
	if queues == nil || kinds == nil {
		return nil, domain.Job{}, &domain.ConfigurationError{Component: "queue", Field: "connections"}
	}
	conn, err := queues.Connection(t.text().ConnectionName)
	if err != nil {
		return nil, domain.Job{}, err
	}
	job, err := NewQueuedJob(kinds, t)
	if err != nil {
		return nil, domain.Job{}, err
	}
	return conn, job, nil
}
