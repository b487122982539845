// Package provider binds driver identifiers to the Driver implementations.
package provider

import (
	"go.uber.org/zap"

	"storekd-sms/internal/adapters/provider/logdriver"
	"storekd-sms/internal/adapters/provider/webhook"
	"storekd-sms/internal/adapters/provider/wittyflow"
	"storekd-sms/internal/config"
	"storekd-sms/internal/ports"
	"storekd-sms/internal/sms"
)

const (
	Wittyflow = "wittyflow"
	Webhook   = "webhook"
	Log       = "log"
)

// Register adds every built-in driver to drivers.
func Register(drivers *sms.Drivers) *sms.Drivers {
	drivers.Register(Wittyflow, func(cfg config.SMS, log *zap.SugaredLogger) (ports.Driver, error) {
		c, err := wittyflow.New(cfg.Wittyflow, wittyflow.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	drivers.Register(Webhook, func(cfg config.SMS, log *zap.SugaredLogger) (ports.Driver, error) {
		c, err := webhook.New(cfg.Webhook, log)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	drivers.Register(Log, func(_ config.SMS, log *zap.SugaredLogger) (ports.Driver, error) {
		return logdriver.New(log), nil
	})
	return drivers
}
