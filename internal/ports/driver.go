package ports

import (
	"context"

	"storekd-sms/internal/domain"
)

// Driver abstracts a wire-level SMS provider.
type Driver interface {
	// Send attempts every recipient in msg.To independently and returns the ones
	// that failed. It returns an error only when msg itself is invalid.
	Send(ctx context.Context, msg *domain.Message) (domain.FailureSet, error)
}
