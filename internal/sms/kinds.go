package sms

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"storekd-sms/internal/domain"
)

// Kinds maps textable kind names to constructors so queued payloads can be
// decoded back into their concrete type on a worker.
type Kinds struct {
	mu     sync.RWMutex
	byName map[string]func() Textable
	byType map[reflect.Type]string
}

// NewKinds creates an empty registry.
func NewKinds() *Kinds {
	return &Kinds{
		byName: make(map[string]func() Textable),
		byType: make(map[reflect.Type]string),
	}
}

// Register binds name to the constructor of a concrete Textable.
func (k *Kinds) Register(name string, newFn func() Textable) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.byName[name] = newFn
	k.byType[reflect.TypeOf(newFn())] = name
}

// KindOf returns the registered name of t's concrete type.
func (k *Kinds) KindOf(t Textable) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	name, ok := k.byType[reflect.TypeOf(t)]
	if !ok {
		return "", fmt.Errorf("%w: %T", domain.ErrUnknownKind, t)
	}
	return name, nil
}

// New returns a zero value of the named kind.
func (k *Kinds) New(name string) (Textable, error) {
	k.mu.RLock()
	newFn, ok := k.byName[name]
	k.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, name)
	}
	return newFn(), nil
}

// Decode rebuilds a Textable of the named kind from its JSON payload.
func (k *Kinds) Decode(name string, payload []byte) (Textable, error) {
	t, err := k.New(name)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return t, nil
	}
	if err := json.Unmarshal(payload, t); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", name, err)
	}
	return t, nil
}
