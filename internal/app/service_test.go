package app

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"storekd-sms/internal/adapters/queue/memory"
	"storekd-sms/internal/config"
	"storekd-sms/internal/domain"
	"storekd-sms/internal/ports"
	"storekd-sms/internal/sms"
	"storekd-sms/internal/textmessages"
)

func newService(t *testing.T) (*TextingService, *memory.Queue, map[string]int) {
	t.Helper()
	counts := map[string]int{}
	drivers := sms.NewDrivers()
	for _, name := range []string{"primary", "backup"} {
		drivers.Register(name, func(config.SMS, *zap.SugaredLogger) (ports.Driver, error) {
			return driverFunc(func(_ context.Context, msg *domain.Message) (domain.FailureSet, error) {
				if err := msg.Validate(); err != nil {
					return nil, err
				}
				counts[name]++
				return domain.FailureSet{}, nil
			}), nil
		})
	}

	mem := memory.New("texts")
	kinds := textmessages.Register(sms.NewKinds())
	m := sms.NewManager(config.SMS{
		Default: "primary",
		From:    "Eben Gen",
		Texters: map[string]config.Texter{"primary": {}, "backup": {}},
	}, drivers, sms.WithQueue(sms.NewQueues("memory").Add("memory", mem), kinds))
	return NewTextingService(m, kinds, nil), mem, counts
}

type driverFunc func(ctx context.Context, msg *domain.Message) (domain.FailureSet, error)

func (f driverFunc) Send(ctx context.Context, msg *domain.Message) (domain.FailureSet, error) {
	return f(ctx, msg)
}

func TestDispatchHonoursTexter(t *testing.T) {
	svc, _, counts := newService(t)

	res, err := svc.Dispatch(context.Background(), DispatchRequest{
		Kind:    textmessages.KindPlain,
		Payload: []byte(`{"message":"hi"}`),
		To:      []string{"+233509297419"},
		Texter:  "backup",
	})
	if err != nil || res.Queued {
		t.Fatalf("dispatch = %+v, %v", res, err)
	}
	if counts["backup"] != 1 || counts["primary"] != 0 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestDispatchQueueMode(t *testing.T) {
	svc, mem, counts := newService(t)

	res, err := svc.Dispatch(context.Background(), DispatchRequest{
		Kind:    textmessages.KindPlain,
		Payload: []byte(`{"message":"hi"}`),
		To:      []string{"+233509297419"},
		Mode:    ModeQueue,
		Queue:   "urgent",
	})
	if err != nil || !res.Queued {
		t.Fatalf("dispatch = %+v, %v", res, err)
	}
	if len(mem.Pushed("urgent")) != 1 || len(counts) != 0 {
		t.Fatal("expected the text on the urgent queue and nothing sent")
	}
}

func TestDispatchRejectsBadRequests(t *testing.T) {
	svc, _, _ := newService(t)

	tests := []struct {
		name string
		req  DispatchRequest
		want error
	}{
		{"unknown kind", DispatchRequest{Kind: "nope"}, domain.ErrUnknownKind},
		{"bad payload", DispatchRequest{Kind: textmessages.KindPlain, Payload: []byte(`[]`)}, ErrInvalidRequest},
		{"unknown mode", DispatchRequest{Kind: textmessages.KindPlain, Payload: []byte(`{"message":"hi"}`), Mode: "fax"}, ErrInvalidRequest},
		{"later without delay", DispatchRequest{Kind: textmessages.KindPlain, Payload: []byte(`{"message":"hi"}`), Mode: ModeLater}, ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Dispatch(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSendTextUsesDefaults(t *testing.T) {
	svc, _, counts := newService(t)

	failures, err := svc.SendText(context.Background(), SendTextRequest{To: []string{"+233509297419"}, Content: "Hello"})
	if err != nil || !failures.Empty() {
		t.Fatalf("send = %v, %v", failures, err)
	}
	if counts["primary"] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}
