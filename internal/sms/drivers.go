package sms

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"storekd-sms/internal/config"
	"storekd-sms/internal/domain"
	"storekd-sms/internal/ports"
)

// DriverConstructor builds a Driver from the provider credential blocks.
type DriverConstructor func(cfg config.SMS, log *zap.SugaredLogger) (ports.Driver, error)

// Drivers maps provider identifiers to their constructors.
type Drivers struct {
	mu   sync.RWMutex
	ctor map[string]DriverConstructor
}

// NewDrivers creates an empty registry.
func NewDrivers() *Drivers {
	return &Drivers{ctor: make(map[string]DriverConstructor)}
}

// Register binds id to ctor, replacing any previous binding.
func (d *Drivers) Register(id string, ctor DriverConstructor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ctor[normalize(id)] = ctor
}

// Names lists the registered identifiers.
func (d *Drivers) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.ctor))
	for name := range d.ctor {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs the driver registered under id.
func (d *Drivers) Build(id string, cfg config.SMS, log *zap.SugaredLogger) (ports.Driver, error) {
	d.mu.RLock()
	ctor, ok := d.ctor[normalize(id)]
	d.mu.RUnlock()
	if !ok {
		return nil, &domain.ConfigurationError{
			Component: "sms",
			Err:       fmt.Errorf("unsupported driver %q", id),
		}
	}
	return ctor(cfg, log)
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
