package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"storekd-sms/internal/domain"
)

func TestPushDefaultsQueueName(t *testing.T) {
	q := New("texts")
	job := domain.Job{ID: uuid.New(), Kind: "plain"}

	if err := q.Push(context.Background(), "", job); err != nil {
		t.Fatalf("push: %v", err)
	}

	got := q.Pushed("texts")
	if len(got) != 1 || got[0].ID != job.ID {
		t.Fatalf("expected job on default queue, got %+v", got)
	}
}

func TestLaterIsScheduledNotReady(t *testing.T) {
	q := New("texts")
	job := domain.Job{ID: uuid.New(), Kind: "plain"}

	if err := q.Later(context.Background(), "urgent", time.Minute, job); err != nil {
		t.Fatalf("later: %v", err)
	}

	if n := len(q.Pushed("urgent")); n != 0 {
		t.Fatalf("expected no ready jobs, got %d", n)
	}
	scheduled := q.Scheduled("urgent")
	if len(scheduled) != 1 || scheduled[0].Job.ID != job.ID {
		t.Fatalf("expected one scheduled job, got %+v", scheduled)
	}
	if scheduled[0].Due.Before(time.Now().Add(50 * time.Second)) {
		t.Fatalf("due time too early: %v", scheduled[0].Due)
	}
}

func TestDrainIncludesDelayedJobs(t *testing.T) {
	q := New("texts")
	ctx := context.Background()
	_ = q.Push(ctx, "", domain.Job{ID: uuid.New(), Kind: "a"})
	_ = q.Later(ctx, "", time.Hour, domain.Job{ID: uuid.New(), Kind: "b"})

	var kinds []string
	err := q.Drain(ctx, "", func(_ context.Context, job domain.Job) error {
		kinds = append(kinds, job.Kind)
		return nil
	})
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(kinds) != 2 || kinds[0] != "a" || kinds[1] != "b" {
		t.Fatalf("unexpected drain order %v", kinds)
	}
	if len(q.Scheduled("")) != 0 {
		t.Fatal("expected delayed set to be empty")
	}
}

func TestDrainStopsOnHandlerError(t *testing.T) {
	q := New("texts")
	ctx := context.Background()
	_ = q.Push(ctx, "", domain.Job{ID: uuid.New()})
	boom := errors.New("boom")

	if err := q.Drain(ctx, "", func(context.Context, domain.Job) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
}

func TestConsumeStopsOnCancel(t *testing.T) {
	q := New("texts")
	ctx, cancel := context.WithCancel(context.Background())
	_ = q.Push(ctx, "", domain.Job{ID: uuid.New()})

	done := make(chan struct{})
	var handled int
	go func() {
		defer close(done)
		_ = q.Consume(ctx, "", func(context.Context, domain.Job) error {
			handled++
			cancel()
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consume did not return after cancel")
	}
	if handled != 1 {
		t.Fatalf("handled %d jobs, want 1", handled)
	}
}

func TestConsumeDelaysRedeliveryOfFailedJob(t *testing.T) {
	q := New("texts")
	q.poll = 10 * time.Millisecond
	q.redeliver = 150 * time.Millisecond
	_ = q.Push(context.Background(), "", domain.Job{ID: uuid.New()})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var calls atomic.Int32
	_ = q.Consume(ctx, "", func(context.Context, domain.Job) error {
		calls.Add(1)
		return errors.New("gateway down")
	})

	if n := calls.Load(); n < 1 || n > 2 {
		t.Fatalf("handler called %d times in 200ms, want at most 2", n)
	}
}
