package sms

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"storekd-sms/internal/domain"
)

func TestNewQueuedJobWithoutDeclarations(t *testing.T) {
	g := &greeting{Name: "Ama"}
	g.Texter("primary").OnQueue("urgent").OnConnection("memory")

	job, err := NewQueuedJob(testKinds(), g)
	if err != nil {
		t.Fatalf("job: %v", err)
	}
	if job.Tries != nil || job.TimeoutSeconds != nil {
		t.Fatalf("expected nil tries and timeout, got %v %v", job.Tries, job.TimeoutSeconds)
	}
	if job.Kind != "greeting" || job.DisplayName() != "greeting" || job.Queue != "urgent" || job.Connection != "memory" || job.Texter != "primary" {
		t.Fatalf("unexpected job %+v", job)
	}

	raw, _ := json.Marshal(job)
	if !strings.Contains(string(raw), `"tries":null`) || !strings.Contains(string(raw), `"timeout":null`) {
		t.Fatalf("expected null tries and timeout in %s", raw)
	}
}

func TestNewQueuedJobDeclaredTries(t *testing.T) {
	job, err := NewQueuedJob(testKinds(), &reminder{Name: "Ama"})
	if err != nil {
		t.Fatalf("job: %v", err)
	}
	if job.Tries == nil || *job.Tries != 3 {
		t.Fatalf("tries = %v", job.Tries)
	}
	if job.Timeout() != 5*time.Second {
		t.Fatalf("timeout = %v", job.Timeout())
	}
}

func TestNewQueuedJobUnknownKind(t *testing.T) {
	if _, err := NewQueuedJob(NewKinds(), &greeting{}); !errors.Is(err, domain.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestQueueTextableDelayed(t *testing.T) {
	queues, mem := testQueues()
	g := &greeting{Name: "Ama"}
	g.DelayBy(time.Minute)

	if err := QueueTextable(context.Background(), queues, testKinds(), g); err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(mem.Pushed("")) != 0 || len(mem.Scheduled("")) != 1 {
		t.Fatal("delayed textable should be scheduled, not pushed")
	}
}

func TestQueueTextableWithoutQueue(t *testing.T) {
	err := QueueTextable(context.Background(), nil, nil, &greeting{})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestQueueTextableUnknownConnection(t *testing.T) {
	queues, _ := testQueues()
	g := &greeting{}
	g.OnConnection("sqs")

	if err := QueueTextable(context.Background(), queues, testKinds(), g); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestJobCloneIsDeep(t *testing.T) {
	job, _ := NewQueuedJob(testKinds(), &reminder{Name: "Ama"})
	clone := job.Clone()
	*clone.Tries = 9
	clone.Payload[0] = 'X'

	if *job.Tries != 3 || job.Payload[0] == 'X' {
		t.Fatal("clone shares state with original")
	}
}
