package sms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storekd-sms/internal/domain"
	"storekd-sms/internal/metrics"
	"storekd-sms/internal/ports"
)

// Worker executes queued text jobs: it decodes the Textable, builds and sends
// it, and reschedules or fails the job according to its declared tries.
type Worker struct {
	factory Factory
	kinds   *Kinds
	queues  ports.QueueFactory
	tries   int
	timeout time.Duration
	log     *zap.SugaredLogger
}

// NewWorker creates a Worker. tries and timeout apply to jobs that declare none.
func NewWorker(factory Factory, kinds *Kinds, queues ports.QueueFactory, tries int, timeout time.Duration, log *zap.SugaredLogger) *Worker {
	if tries < 1 {
		tries = 1
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Worker{
		factory: factory,
		kinds:   kinds,
		queues:  queues,
		tries:   tries,
		timeout: timeout,
		log:     log,
	}
}

// Run consumes queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context, consumer ports.JobConsumer, queue string) error {
	w.log.Infow("worker started", "queue", queue, "tries", w.tries, "timeout", w.timeout)
	return consumer.Consume(ctx, queue, w.Handle)
}

// Handle processes one job. It never asks the queue to redeliver: a job whose
// retry cannot be scheduled is failed so its declared tries stay bounded.
//
// The send and the retry run detached from ctx cancellation so that a worker
// shutting down does not abandon a send the driver already completed. The per-job
// timeout still bounds the send.
func (w *Worker) Handle(ctx context.Context, job domain.Job) error {
	log := w.log.With("job_id", job.ID, "kind", job.DisplayName(), "attempt", job.Attempts+1)
	ctx = context.WithoutCancel(ctx)

	textable, err := w.kinds.Decode(job.Kind, job.Payload)
	if err != nil {
		metrics.Jobs.WithLabelValues(job.Kind, metrics.OutcomeDiscarded).Inc()
		log.Errorw("discarding undecodable job", "error", err)
		return nil
	}
	if job.Texter != "" && textable.text().TexterName == "" {
		textable.text().Texter(job.Texter)
	}

	tries := w.tries
	if job.Tries != nil && *job.Tries > 0 {
		tries = *job.Tries
	}
	timeout := job.Timeout()
	if timeout <= 0 {
		timeout = w.timeout
	}

	err = w.send(ctx, textable, timeout)
	if err == nil {
		metrics.Jobs.WithLabelValues(job.Kind, metrics.OutcomeSent).Inc()
		log.Infow("job processed")
		return nil
	}

	attempt := job.Attempts + 1
	if attempt < tries && retryable(err) {
		delay := retryDelay(textable, attempt)
		rerr := w.retry(ctx, job, attempt, delay)
		if rerr == nil {
			metrics.Jobs.WithLabelValues(job.Kind, metrics.OutcomeRetried).Inc()
			log.Warnw("job retried", "error", err, "delay", delay, "tries", tries)
			return nil
		}
		log.Errorw("reschedule failed", "error", rerr)
		err = fmt.Errorf("reschedule job %s: %w: %w", job.ID, rerr, err)
	}

	if hook, ok := textable.(FailureHook); ok {
		hook.Failed(err)
	}
	metrics.Jobs.WithLabelValues(job.Kind, metrics.OutcomeFailed).Inc()
	log.Errorw("job failed", "error", err, "tries", tries)
	return nil
}

// send reports only the driver's verdict. A deadline reached after the driver
// returned does not turn a completed send into a failure.
func (w *Worker) send(ctx context.Context, textable Textable, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	_, err := SendTextable(ctx, w.factory, textable)
	return err
}

func (w *Worker) retry(ctx context.Context, job domain.Job, attempt int, delay time.Duration) error {
	conn, err := w.queues.Connection(job.Connection)
	if err != nil {
		return err
	}
	next := job.Clone()
	next.Attempts = attempt
	if delay > 0 {
		return conn.Later(ctx, job.Queue, delay, next)
	}
	return conn.Push(ctx, job.Queue, next)
}

func retryDelay(textable Textable, attempt int) time.Duration {
	if b, ok := textable.(BackingOff); ok {
		return b.RetryAfter(attempt)
	}
	return 0
}

// retryable reports whether another attempt could succeed. Configuration,
// validation and recipient errors fail the same way every time.
func retryable(err error) bool {
	for _, terminal := range []error{
		domain.ErrConfiguration,
		domain.ErrInvalidMessage,
		domain.ErrRecipientResolution,
		domain.ErrDispatchType,
		domain.ErrUnknownKind,
	} {
		if errors.Is(err, terminal) {
			return false
		}
	}
	return true
}
