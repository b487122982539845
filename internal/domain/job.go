package domain

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Job is the serialisable queue record for a deferred Textable.
// Tries and TimeoutSeconds are nil when the Textable declares none.
type Job struct {
	ID             uuid.UUID       `json:"id"`
	Kind           string          `json:"kind"`
	Payload        json.RawMessage `json:"payload"`
	Texter         string          `json:"texter,omitempty"`
	Connection     string          `json:"connection,omitempty"`
	Queue          string          `json:"queue,omitempty"`
	Tries          *int            `json:"tries"`
	TimeoutSeconds *int            `json:"timeout"`
	Attempts       int             `json:"attempts"`
	CreatedAt      time.Time       `json:"created_at"`
}

// DisplayName is the concrete Textable kind, used in logs and metrics.
func (j Job) DisplayName() string {
	return j.Kind
}

// Timeout returns the declared timeout, or zero when none was declared.
func (j Job) Timeout() time.Duration {
	if j.TimeoutSeconds == nil {
		return 0
	}
	return time.Duration(*j.TimeoutSeconds) * time.Second
}

// Clone returns a copy that shares no mutable state with j.
func (j Job) Clone() Job {
	c := j
	c.Payload = slices.Clone(j.Payload)
	if j.Tries != nil {
		tries := *j.Tries
		c.Tries = &tries
	}
	if j.TimeoutSeconds != nil {
		timeout := *j.TimeoutSeconds
		c.TimeoutSeconds = &timeout
	}
	return c
}
