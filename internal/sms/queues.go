package sms

import (
	"fmt"
	"sync"

	"storekd-sms/internal/domain"
	"storekd-sms/internal/ports"
)

// Queues resolves queue connections by name.
type Queues struct {
	mu    sync.RWMutex
	def   string
	conns map[string]ports.JobQueue
}

// NewQueues creates a registry whose default connection is def.
func NewQueues(def string) *Queues {
	return &Queues{def: def, conns: make(map[string]ports.JobQueue)}
}

// Add registers q under name.
func (q *Queues) Add(name string, conn ports.JobQueue) *Queues {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.conns[name] = conn
	return q
}

// Connection implements ports.QueueFactory.
func (q *Queues) Connection(name string) (ports.JobQueue, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if name == "" {
		name = q.def
	}
	conn, ok := q.conns[name]
	if !ok {
		return nil, &domain.ConfigurationError{
			Component: "queue",
			Err:       fmt.Errorf("connection %q is not defined", name),
		}
	}
	return conn, nil
}
