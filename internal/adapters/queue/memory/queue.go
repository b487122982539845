// Package memory implements an in-process job queue for tests and local development.
package memory

import (
	"context"
	"sync"
	"time"

	"storekd-sms/internal/domain"
)

// Delayed is a job waiting for its due time.
type Delayed struct {
	Queue string
	Due   time.Time
	Job   domain.Job
}

// Queue implements ports.JobQueue and ports.JobConsumer in memory.
type Queue struct {
	defaultQueue string
	poll         time.Duration
	redeliver    time.Duration

	mu      sync.Mutex
	ready   map[string][]domain.Job
	delayed []Delayed
	wake    chan struct{}
}

func New(defaultQueue string) *Queue {
	return &Queue{
		defaultQueue: defaultQueue,
		poll:         50 * time.Millisecond,
		redeliver:    time.Second,
		ready:        make(map[string][]domain.Job),
		wake:         make(chan struct{}, 1),
	}
}

func (q *Queue) Push(_ context.Context, queue string, job domain.Job) error {
	q.mu.Lock()
	queue = q.name(queue)
	q.ready[queue] = append(q.ready[queue], job.Clone())
	q.mu.Unlock()
	q.signal()
	return nil
}

func (q *Queue) Later(ctx context.Context, queue string, delay time.Duration, job domain.Job) error {
	if delay <= 0 {
		return q.Push(ctx, queue, job)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.delayed = append(q.delayed, Delayed{Queue: q.name(queue), Due: time.Now().Add(delay), Job: job.Clone()})
	return nil
}

// Pushed returns the jobs ready on queue.
func (q *Queue) Pushed(queue string) []domain.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := q.ready[q.name(queue)]
	out := make([]domain.Job, len(jobs))
	for i, j := range jobs {
		out[i] = j.Clone()
	}
	return out
}

// Scheduled returns the delayed jobs for queue.
func (q *Queue) Scheduled(queue string) []Delayed {
	q.mu.Lock()
	defer q.mu.Unlock()
	queue = q.name(queue)
	var out []Delayed
	for _, d := range q.delayed {
		if d.Queue == queue {
			d.Job = d.Job.Clone()
			out = append(out, d)
		}
	}
	return out
}

// Consume hands ready jobs to handler until ctx is cancelled. A job whose
// handler fails becomes available again after the redelivery delay.
func (q *Queue) Consume(ctx context.Context, queue string, handler func(ctx context.Context, job domain.Job) error) error {
	queue = q.name(queue)
	ticker := time.NewTicker(q.poll)
	defer ticker.Stop()

	for {
		q.promote(queue, time.Now())
		for {
			job, ok := q.pop(queue)
			if !ok {
				break
			}
			if err := handler(ctx, job); err != nil {
				_ = q.Later(ctx, queue, q.redeliver, job)
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-q.wake:
		}
	}
}

// Drain runs handler over every job on queue, including delayed ones regardless
// of their due time, until the queue is empty. It stops at the first handler error.
func (q *Queue) Drain(ctx context.Context, queue string, handler func(ctx context.Context, job domain.Job) error) error {
	queue = q.name(queue)
	for {
		job, ok := q.pop(queue)
		if !ok {
			if q.promote(queue, time.Time{}) == 0 {
				return nil
			}
			continue
		}
		if err := handler(ctx, job); err != nil {
			return err
		}
	}
}

func (q *Queue) pop(queue string) (domain.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := q.ready[queue]
	if len(jobs) == 0 {
		return domain.Job{}, false
	}
	job := jobs[0]
	q.ready[queue] = jobs[1:]
	return job, true
}

// promote moves delayed jobs due at now onto the ready list. A zero now promotes all of them.
func (q *Queue) promote(queue string, now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	kept := q.delayed[:0]
	for _, d := range q.delayed {
		if d.Queue == queue && (now.IsZero() || !d.Due.After(now)) {
			q.ready[queue] = append(q.ready[queue], d.Job)
			n++
			continue
		}
		kept = append(kept, d)
	}
	q.delayed = kept
	return n
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) name(queue string) string {
	if queue == "" {
		return q.defaultQueue
	}
	return queue
}
