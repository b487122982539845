package ports

import (
	"context"

	"storekd-sms/internal/domain"
)

// EventDispatcher is the hook pair a Texter fires around every send.
type EventDispatcher interface {
	// Sending runs before dispatch; returning false suppresses the send.
	Sending(ctx context.Context, texter string, msg *domain.Message) bool

	// Sent runs after the driver accepted the message.
	Sent(ctx context.Context, texter string, msg *domain.Message, failures domain.FailureSet)
}
