// Package events provides the in-process hooks fired around every text send.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"storekd-sms/internal/domain"
)

// SendingListener runs before a message is sent. Returning false cancels the send.
type SendingListener func(ctx context.Context, texter string, msg *domain.Message) bool

// SentListener runs after a driver accepted a message.
type SentListener func(ctx context.Context, texter string, msg *domain.Message, failures domain.FailureSet)

// Dispatcher implements ports.EventDispatcher over registered listeners.
type Dispatcher struct {
	mu      sync.RWMutex
	sending []SendingListener
	sent    []SentListener
	log     *zap.SugaredLogger
}

func NewDispatcher(log *zap.SugaredLogger) *Dispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Dispatcher{log: log}
}

// OnSending registers a pre-send listener.
func (d *Dispatcher) OnSending(l SendingListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sending = append(d.sending, l)
}

// OnSent registers a post-send listener.
func (d *Dispatcher) OnSent(l SentListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, l)
}

// Sending runs the pre-send listeners in order and stops at the first one returning false.
func (d *Dispatcher) Sending(ctx context.Context, texter string, msg *domain.Message) bool {
	d.mu.RLock()
	listeners := d.sending
	d.mu.RUnlock()

	for i, l := range listeners {
		if !l(ctx, texter, msg) {
			d.log.Debugw("sending listener cancelled text", "texter", texter, "listener", i)
			return false
		}
	}
	return true
}

// Sent runs every post-send listener.
func (d *Dispatcher) Sent(ctx context.Context, texter string, msg *domain.Message, failures domain.FailureSet) {
	d.mu.RLock()
	listeners := d.sent
	d.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, texter, msg, failures)
	}
}
