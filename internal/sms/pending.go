package sms

import (
	"context"
	"slices"
	"time"

	"storekd-sms/internal/domain"
)

// dispatcher is the part of a Sender a PendingText forwards to.
type dispatcher interface {
	Send(ctx context.Context, textable Textable) (domain.FailureSet, error)
	Queue(ctx context.Context, textable Textable, queue string) error
	Later(ctx context.Context, delay time.Duration, textable Textable, queue string) error
}

// PendingText binds recipients to a Textable before it is sent or queued.
type PendingText struct {
	sender     dispatcher
	recipients []any
}

func newPendingText(sender dispatcher) *PendingText {
	return &PendingText{sender: sender}
}

// To sets the recipients, replacing any set earlier in the chain.
func (p *PendingText) To(recipients ...any) *PendingText {
	p.recipients = slices.Clone(recipients)
	return p
}

// Send adds the recipients to textable and sends it.
func (p *PendingText) Send(ctx context.Context, textable Textable) (domain.FailureSet, error) {
	if err := p.fill(textable); err != nil {
		return nil, err
	}
	return p.sender.Send(ctx, textable)
}

// Queue adds the recipients to textable and queues it.
func (p *PendingText) Queue(ctx context.Context, textable Textable, queue string) error {
	if err := p.fill(textable); err != nil {
		return err
	}
	return p.sender.Queue(ctx, textable, queue)
}

// Later adds the recipients to textable and queues it for delivery after delay.
func (p *PendingText) Later(ctx context.Context, delay time.Duration, textable Textable, queue string) error {
	if err := p.fill(textable); err != nil {
		return err
	}
	return p.sender.Later(ctx, delay, textable, queue)
}

func (p *PendingText) fill(textable Textable) error {
	if !isTextable(textable) {
		return domain.ErrDispatchType
	}
	if len(p.recipients) == 0 {
		return nil
	}
	return textable.text().To(p.recipients...)
}
