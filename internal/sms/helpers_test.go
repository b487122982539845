package sms

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"storekd-sms/internal/adapters/queue/memory"
	"storekd-sms/internal/config"
	"storekd-sms/internal/domain"
	"storekd-sms/internal/ports"
)

// fakeDriver records every message and fails the recipients in fail.
// after runs once a message has been delivered.
type fakeDriver struct {
	mu    sync.Mutex
	fail  map[string]bool
	err   error
	after func()
	calls int
	sent  []domain.Message
}

func (d *fakeDriver) Send(_ context.Context, msg *domain.Message) (domain.FailureSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if d.err != nil {
		return nil, d.err
	}
	cp := *msg
	cp.To = slices.Clone(msg.To)
	d.sent = append(d.sent, cp)
	if d.after != nil {
		d.after()
	}

	failures := domain.FailureSet{}
	for _, to := range msg.To {
		if d.fail[to] {
			failures = append(failures, to)
		}
	}
	return failures, nil
}

func (d *fakeDriver) last() domain.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.sent) == 0 {
		return domain.Message{}
	}
	return d.sent[len(d.sent)-1]
}

func (d *fakeDriver) sentCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

// fakeEvents records hook calls; allow controls the sending hook result.
type fakeEvents struct {
	allow    bool
	sending  int
	sent     int
	failures domain.FailureSet
}

func (e *fakeEvents) Sending(context.Context, string, *domain.Message) bool {
	e.sending++
	return e.allow
}

func (e *fakeEvents) Sent(_ context.Context, _ string, _ *domain.Message, failures domain.FailureSet) {
	e.sent++
	e.failures = failures
}

type person struct{ phone string }

func (p person) RouteSMSValue() string { return p.phone }

type contact struct{ phone string }

func (c contact) Phone() string { return c.phone }

// greeting sends to its own Phone when set.
type greeting struct {
	Text
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

func (g *greeting) Build() error {
	if g.Phone != "" {
		if err := g.To(g.Phone); err != nil {
			return err
		}
	}
	g.Content("Hello " + g.Name)
	return nil
}

var (
	failedMu  sync.Mutex
	failedErr []error
)

// reminder is always queued and declares retries.
type reminder struct {
	Text
	Name string `json:"name"`
}

func (r *reminder) ShouldQueue() bool                    { return true }
func (r *reminder) Tries() int                           { return 3 }
func (r *reminder) Timeout() time.Duration               { return 5 * time.Second }
func (r *reminder) RetryAfter(attempt int) time.Duration { return time.Duration(attempt) * time.Second }

func (r *reminder) Failed(err error) {
	failedMu.Lock()
	defer failedMu.Unlock()
	failedErr = append(failedErr, err)
}

func (r *reminder) Build() error {
	r.From("Reminders").Content("Don't forget, " + r.Name)
	return nil
}

func resetFailed() []error {
	failedMu.Lock()
	defer failedMu.Unlock()
	out := failedErr
	failedErr = nil
	return out
}

func testKinds() *Kinds {
	k := NewKinds()
	k.Register("greeting", func() Textable { return &greeting{} })
	k.Register("reminder", func() Textable { return &reminder{} })
	return k
}

func testQueues() (*Queues, *memory.Queue) {
	mem := memory.New("texts")
	return NewQueues("memory").Add("memory", mem), mem
}

func fakeDrivers(d *fakeDriver, builds *int) *Drivers {
	drivers := NewDrivers()
	drivers.Register("fake", func(config.SMS, *zap.SugaredLogger) (ports.Driver, error) {
		if builds != nil {
			*builds++
		}
		return d, nil
	})
	drivers.Register("broken", func(config.SMS, *zap.SugaredLogger) (ports.Driver, error) {
		return nil, &domain.ConfigurationError{Component: "broken", Field: "app_id"}
	})
	return drivers
}

func smsConfig() config.SMS {
	return config.SMS{
		Default: "primary",
		From:    "Eben Gen",
		Texters: map[string]config.Texter{
			"primary":   {Driver: "fake"},
			"secondary": {Driver: "fake"},
		},
	}
}

var errGatewayDown = errors.New("gateway down")
