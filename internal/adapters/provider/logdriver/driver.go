// Package logdriver implements a ports.Driver that only logs, for local development.
package logdriver

import (
	"context"

	"go.uber.org/zap"

	"storekd-sms/internal/domain"
)

// Driver writes each recipient of a message to the log instead of texting it.
type Driver struct {
	log *zap.SugaredLogger
}

// New returns a Driver logging through log, or discarding when log is nil.
func New(log *zap.SugaredLogger) *Driver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Driver{log: log}
}

// Send logs one line per recipient and never fails a recipient.
func (d *Driver) Send(_ context.Context, msg *domain.Message) (domain.FailureSet, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	for _, to := range msg.To {
		d.log.Infow("text", "from", msg.From, "to", to, "content", msg.Content, "as_flash", msg.AsFlash)
	}
	return domain.FailureSet{}, nil
}
