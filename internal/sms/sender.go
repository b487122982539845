package sms

import (
	"context"
	"time"

	"storekd-sms/internal/domain"
)

// Sender is the dispatch surface shared by a Texter and the Manager, which
// forwards every call to its default texter.
type Sender interface {
	To(recipients ...any) *PendingText
	Send(ctx context.Context, textable Textable) (domain.FailureSet, error)
	SendRaw(ctx context.Context, content string, build func(*domain.Message)) (domain.FailureSet, error)
	Queue(ctx context.Context, textable Textable, queue string) error
	Later(ctx context.Context, delay time.Duration, textable Textable, queue string) error
	Failures() domain.FailureSet
}

var (
	_ Sender  = (*Texter)(nil)
	_ Sender  = (*Manager)(nil)
	_ Factory = (*Texter)(nil)
	_ Factory = (*Manager)(nil)
)
