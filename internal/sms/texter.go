package sms

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"storekd-sms/internal/domain"
	"storekd-sms/internal/metrics"
	"storekd-sms/internal/ports"
)

// Texter is the sending engine for one named configuration.
type Texter struct {
	name   string
	client *Client
	events ports.EventDispatcher
	queues ports.QueueFactory
	kinds  *Kinds
	log    *zap.SugaredLogger

	from        string
	to          []string
	asFlash     bool
	callbackURI string

	mu       sync.Mutex
	failures domain.FailureSet
}

// Option customises a Texter.
type Option func(*Texter)

// WithEvents sets the pre-send/post-send hooks.
func WithEvents(events ports.EventDispatcher) Option {
	return func(t *Texter) { t.events = events }
}

// WithQueue sets the queue connections and the kind registry used to serialise queued textables.
func WithQueue(queues ports.QueueFactory, kinds *Kinds) Option {
	return func(t *Texter) {
		t.queues = queues
		t.kinds = kinds
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(t *Texter) {
		if log != nil {
			t.log = log
		}
	}
}

// WithAlwaysFrom sets the sender used when a message sets none.
func WithAlwaysFrom(from string) Option {
	return func(t *Texter) { t.from = from }
}

// WithAlwaysTo redirects every message to phones, replacing the recipients it was built with.
// Intended for staging and local development.
func WithAlwaysTo(phones ...string) Option {
	return func(t *Texter) {
		t.to = slices.DeleteFunc(slices.Clone(phones), func(p string) bool { return p == "" })
	}
}

// WithAlwaysAsFlash sends every message as a flash message.
func WithAlwaysAsFlash(asFlash bool) Option {
	return func(t *Texter) { t.asFlash = asFlash }
}

// WithAlwaysCallbackURI sets the callback URI used when a message sets none.
func WithAlwaysCallbackURI(uri string) Option {
	return func(t *Texter) { t.callbackURI = uri }
}

// NewTexter creates a Texter named name sending through client.
func NewTexter(name string, client *Client, opts ...Option) *Texter {
	t := &Texter{
		name:   name,
		client: client,
		log:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	t.log = t.log.With("texter", name)
	return t
}

// Name returns the configured texter name.
func (t *Texter) Name() string {
	return t.name
}

// Texter lets a Texter stand in for a Factory: every name resolves to itself.
func (t *Texter) Texter(string) (*Texter, error) {
	return t, nil
}

// To begins a fluent dispatch to recipients.
func (t *Texter) To(recipients ...any) *PendingText {
	return newPendingText(t).To(recipients...)
}

// Send delivers a Textable. Templates implementing ShouldQueue are pushed onto
// the queue instead and the returned FailureSet is nil.
func (t *Texter) Send(ctx context.Context, textable Textable) (domain.FailureSet, error) {
	if !isTextable(textable) {
		return nil, domain.ErrDispatchType
	}
	textable.text().Texter(t.name)

	if q, ok := textable.(ShouldQueue); ok && q.ShouldQueue() {
		return nil, t.enqueue(ctx, textable)
	}
	return SendTextable(ctx, t, textable)
}

// SendRaw builds a Message from content, lets build populate it and sends it.
// A nil FailureSet with a nil error means the sending hook suppressed the message.
func (t *Texter) SendRaw(ctx context.Context, content string, build func(*domain.Message)) (domain.FailureSet, error) {
	msg := t.createMessage(content)

	if build != nil {
		build(msg)
	}

	if len(t.to) > 0 {
		t.log.Warnw("recipients redirected by global to", "discarded", len(msg.To), "to", t.to)
		msg.SetTo(t.to, true)
	}

	if t.events != nil && !t.events.Sending(ctx, t.name, msg) {
		t.setFailures(nil)
		metrics.TextsSuppressed.WithLabelValues(t.name).Inc()
		t.log.Infow("text suppressed by sending hook", "recipients", len(msg.To))
		return nil, nil
	}

	start := time.Now()
	var failures domain.FailureSet
	if err := t.client.Send(ctx, msg, &failures); err != nil {
		t.setFailures(nil)
		return nil, fmt.Errorf("texter %s: %w", t.name, err)
	}
	metrics.DriverDuration.WithLabelValues(t.name).Observe(time.Since(start).Seconds())
	t.setFailures(failures)

	metrics.TextsSent.WithLabelValues(t.name).Inc()
	metrics.RecipientFailures.WithLabelValues(t.name).Add(float64(len(failures)))
	t.log.Infow("text sent", "recipients", len(msg.To), "failures", len(failures))

	if t.events != nil {
		t.events.Sent(ctx, t.name, msg, failures)
	}
	return failures, nil
}

// Queue pushes textable onto the queue, overriding its queue name when queue is not empty.
func (t *Texter) Queue(ctx context.Context, textable Textable, queue string) error {
	if !isTextable(textable) {
		return domain.ErrDispatchType
	}
	if queue != "" {
		textable.text().OnQueue(queue)
	}
	textable.text().Texter(t.name)
	return t.enqueue(ctx, textable)
}

// OnQueue pushes textable onto the named queue.
func (t *Texter) OnQueue(ctx context.Context, queue string, textable Textable) error {
	return t.Queue(ctx, textable, queue)
}

// Later queues textable for delivery after delay.
func (t *Texter) Later(ctx context.Context, delay time.Duration, textable Textable, queue string) error {
	if !isTextable(textable) {
		return domain.ErrDispatchType
	}
	if queue != "" {
		textable.text().OnQueue(queue)
	}
	textable.text().Texter(t.name)
	return LaterTextable(ctx, t.queues, t.kinds, delay, textable)
}

// LaterOn queues textable on the named queue for delivery after delay.
func (t *Texter) LaterOn(ctx context.Context, queue string, delay time.Duration, textable Textable) error {
	return t.Later(ctx, delay, textable, queue)
}

// Failures returns the recipients that failed on this texter's most recent send.
func (t *Texter) Failures() domain.FailureSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.failures)
}

// setFailures overwrites the recorded failures; every send attempt replaces them.
func (t *Texter) setFailures(f domain.FailureSet) {
	t.mu.Lock()
	t.failures = f
	t.mu.Unlock()
}

func (t *Texter) enqueue(ctx context.Context, textable Textable) error {
	return QueueTextable(ctx, t.queues, t.kinds, textable)
}

func (t *Texter) createMessage(content string) *domain.Message {
	msg := domain.NewMessage(content)
	if t.from != "" {
		msg.SetFrom(t.from)
	}
	if t.asFlash {
		msg.SetAsFlash(true)
	}
	if t.callbackURI != "" {
		msg.SetCallbackURI(t.callbackURI)
	}
	return msg
}
