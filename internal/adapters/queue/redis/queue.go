// Package redis implements the job queue on Redis lists with a sorted set for delayed jobs.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storekd-sms/internal/domain"
)

// migrateDue moves delayed jobs whose time has come onto the ready list.
var migrateDue = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, 100)
for _, job in ipairs(due) do
	redis.call('ZREM', KEYS[1], job)
	redis.call('RPUSH', KEYS[2], job)
end
return #due
`)

// Queue implements ports.JobQueue and ports.JobConsumer on Redis.
type Queue struct {
	client       redis.UniversalClient
	defaultQueue string
	block        time.Duration
	log          *zap.SugaredLogger
}

// New creates a Queue on a single Redis node at addr.
func New(addr, defaultQueue string, log *zap.SugaredLogger) *Queue {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, DB: 0}), defaultQueue, log)
}

// NewWithClient creates a Queue on an existing client.
func NewWithClient(client redis.UniversalClient, defaultQueue string, log *zap.SugaredLogger) *Queue {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Queue{client: client, defaultQueue: defaultQueue, block: time.Second, log: log}
}

func readyKey(queue string) string   { return "queues:" + queue }
func delayedKey(queue string) string { return "queues:" + queue + ":delayed" }

// Push appends job to the ready list of queue.
func (q *Queue) Push(ctx context.Context, queue string, job domain.Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, readyKey(q.name(queue)), body).Err(); err != nil {
		return fmt.Errorf("push job %s: %w", job.ID, err)
	}
	return nil
}

// Later adds job to the delayed set of queue, scored by when it becomes available.
func (q *Queue) Later(ctx context.Context, queue string, delay time.Duration, job domain.Job) error {
	if delay <= 0 {
		return q.Push(ctx, queue, job)
	}
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	due := float64(time.Now().Add(delay).UnixMilli())
	if err := q.client.ZAdd(ctx, delayedKey(q.name(queue)), redis.Z{Score: due, Member: body}).Err(); err != nil {
		return fmt.Errorf("schedule job %s: %w", job.ID, err)
	}
	return nil
}

// Consume pops jobs from queue until ctx is cancelled. A job whose handler
// fails is pushed back onto the ready list.
func (q *Queue) Consume(ctx context.Context, queue string, handler func(ctx context.Context, job domain.Job) error) error {
	queue = q.name(queue)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := strconv.FormatInt(time.Now().UnixMilli(), 10)
		if err := migrateDue.Run(ctx, q.client, []string{delayedKey(queue), readyKey(queue)}, now).Err(); err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("migrate delayed jobs: %w", err)
		}

		res, err := q.client.BLPop(ctx, q.block, readyKey(queue)).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("pop job: %w", err)
		}

		// BLPOP returns [key, value].
		raw := res[1]
		var job domain.Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			q.log.Errorw("unmarshal job", "error", err)
			continue
		}

		if err := handler(ctx, job); err != nil {
			q.log.Errorw("handler error", "job_id", job.ID, "error", err)
			if perr := q.client.RPush(context.WithoutCancel(ctx), readyKey(queue), raw).Err(); perr != nil {
				return fmt.Errorf("requeue job %s: %w", job.ID, perr)
			}
		}
	}
}

// Close releases the Redis connection pool.
func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) name(queue string) string {
	if queue == "" {
		return q.defaultQueue
	}
	return queue
}
