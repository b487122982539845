// Package metrics exposes the Prometheus collectors for text dispatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TextsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_texts_sent_total",
			Help: "Total number of messages handed to a driver",
		},
		[]string{"texter"},
	)

	RecipientFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_recipient_failures_total",
			Help: "Total number of recipients a driver could not reach",
		},
		[]string{"texter"},
	)

	TextsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_texts_suppressed_total",
			Help: "Total number of messages cancelled by a sending hook",
		},
		[]string{"texter"},
	)

	Jobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_jobs_total",
			Help: "Queued text jobs by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	DriverDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sms_driver_send_duration_seconds",
			Help:    "Duration of a driver send across all recipients",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
		},
		[]string{"texter"},
	)
)

// Job outcomes.
const (
	OutcomeQueued    = "queued"
	OutcomeSent      = "sent"
	OutcomeRetried   = "retried"
	OutcomeFailed    = "failed"
	OutcomeDiscarded = "discarded"
)
