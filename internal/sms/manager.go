package sms

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"storekd-sms/internal/config"
	"storekd-sms/internal/domain"
)

// Manager resolves named texters from configuration and caches them.
// Its Sender methods forward to the texter a Textable names, or to the default texter.
type Manager struct {
	drivers *Drivers
	opts    []Option
	log     *zap.SugaredLogger

	mu      sync.Mutex
	cfg     config.SMS
	texters map[string]*Texter
}

// NewManager creates a Manager. opts are applied to every texter it builds.
func NewManager(cfg config.SMS, drivers *Drivers, opts ...Option) *Manager {
	probe := &Texter{log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		if opt != nil {
			opt(probe)
		}
	}

	cfg.Texters = maps.Clone(cfg.Texters)
	if cfg.Texters == nil {
		cfg.Texters = make(map[string]config.Texter)
	}

	return &Manager{
		drivers: drivers,
		opts:    opts,
		log:     probe.log,
		cfg:     cfg,
		texters: make(map[string]*Texter),
	}
}

// DefaultTexterName returns the name used when none is given.
func (m *Manager) DefaultTexterName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.Default
}

// SetDefaultTexter changes the name used when none is given.
func (m *Manager) SetDefaultTexter(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Default = name
}

// AddTexters merges entries over the configured texters. Cached texters with
// the same names are rebuilt on next use.
func (m *Manager) AddTexters(entries map[string]config.Texter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, entry := range entries {
		m.cfg.Texters[name] = entry
		delete(m.texters, name)
	}
}

// Texter returns the named texter, building it on first use. An empty name selects the default.
func (m *Manager) Texter(name string) (*Texter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		name = m.cfg.Default
	}
	if t, ok := m.texters[name]; ok {
		return t, nil
	}

	entry, ok := m.cfg.Texters[name]
	if !ok {
		return nil, &domain.ConfigurationError{
			Component: "sms",
			Err:       fmt.Errorf("%w: %q", domain.ErrTexterNotDefined, name),
		}
	}

	driverID := entry.Driver
	if driverID == "" {
		driverID = name
	}
	driver, err := m.drivers.Build(driverID, m.cfg, m.log.With("texter", name, "driver", driverID))
	if err != nil {
		return nil, fmt.Errorf("resolve texter %s: %w", name, err)
	}

	from, to, asFlash, callbackURI := m.cfg.Resolved(entry)
	opts := append(slices.Clone(m.opts),
		WithAlwaysFrom(from),
		WithAlwaysTo(splitPhones(to)...),
		WithAlwaysAsFlash(asFlash),
		WithAlwaysCallbackURI(callbackURI),
	)
	t := NewTexter(name, NewClient(driver), opts...)
	m.texters[name] = t

	m.log.Infow("texter resolved", "texter", name, "driver", driverID)
	return t, nil
}

// To begins a fluent dispatch through the manager.
func (m *Manager) To(recipients ...any) *PendingText {
	return newPendingText(m).To(recipients...)
}

// Send delivers textable through the texter it names, or the default texter.
func (m *Manager) Send(ctx context.Context, textable Textable) (domain.FailureSet, error) {
	t, err := m.texterFor(textable)
	if err != nil {
		return nil, err
	}
	return t.Send(ctx, textable)
}

// SendRaw sends raw content through the default texter.
func (m *Manager) SendRaw(ctx context.Context, content string, build func(*domain.Message)) (domain.FailureSet, error) {
	t, err := m.Texter("")
	if err != nil {
		return nil, err
	}
	return t.SendRaw(ctx, content, build)
}

// Queue queues textable through the texter it names, or the default texter.
func (m *Manager) Queue(ctx context.Context, textable Textable, queue string) error {
	t, err := m.texterFor(textable)
	if err != nil {
		return err
	}
	return t.Queue(ctx, textable, queue)
}

// OnQueue queues textable on the named queue.
func (m *Manager) OnQueue(ctx context.Context, queue string, textable Textable) error {
	return m.Queue(ctx, textable, queue)
}

// Later queues textable for delivery after delay.
func (m *Manager) Later(ctx context.Context, delay time.Duration, textable Textable, queue string) error {
	t, err := m.texterFor(textable)
	if err != nil {
		return err
	}
	return t.Later(ctx, delay, textable, queue)
}

// LaterOn queues textable on the named queue for delivery after delay.
func (m *Manager) LaterOn(ctx context.Context, queue string, delay time.Duration, textable Textable) error {
	return m.Later(ctx, delay, textable, queue)
}

// Failures returns the failures of the default texter's most recent send.
func (m *Manager) Failures() domain.FailureSet {
	t, err := m.Texter("")
	if err != nil {
		return nil
	}
	return t.Failures()
}

func (m *Manager) texterFor(textable Textable) (*Texter, error) {
	if !isTextable(textable) {
		return nil, domain.ErrDispatchType
	}
	return m.Texter(textable.text().TexterName)
}

func splitPhones(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
