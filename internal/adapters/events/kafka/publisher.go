// Package kafka publishes sent-text events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"storekd-sms/internal/domain"
)

// SentEvent is the record written for every text a driver accepted.
type SentEvent struct {
	Texter        string    `json:"texter"`
	From          string    `json:"from"`
	To            []string  `json:"to"`
	Failures      []string  `json:"failures"`
	ContentLength int       `json:"content_length"`
	AsFlash       bool      `json:"as_flash"`
	SentAt        time.Time `json:"sent_at"`
}

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// SentPublisher is a post-send listener that writes a SentEvent per message.
type SentPublisher struct {
	writer messageWriter
	log    *zap.SugaredLogger
	now    func() time.Time
}

// NewSentPublisher creates an asynchronous writer on topic.
func NewSentPublisher(brokers []string, topic string, log *zap.SugaredLogger) *SentPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
		Async:        true,
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	w.Completion = func(_ []kafkago.Message, err error) {
		if err != nil {
			log.Warnw("publish sent event", "error", err)
		}
	}
	return &SentPublisher{writer: w, log: log, now: time.Now}
}

// Sent matches events.SentListener.
func (p *SentPublisher) Sent(ctx context.Context, texter string, msg *domain.Message, failures domain.FailureSet) {
	body, err := json.Marshal(SentEvent{
		Texter:        texter,
		From:          msg.From,
		To:            msg.To,
		Failures:      failures,
		ContentLength: len(msg.Content),
		AsFlash:       msg.AsFlash,
		SentAt:        p.now().UTC(),
	})
	if err != nil {
		p.log.Errorw("marshal sent event", "error", err)
		return
	}

	if err := p.writer.WriteMessages(ctx, kafkago.Message{Key: []byte(texter), Value: body}); err != nil {
		p.log.Warnw("write sent event", "texter", texter, "error", err)
	}
}

// Close flushes pending events.
func (p *SentPublisher) Close() error {
	return p.writer.Close()
}
