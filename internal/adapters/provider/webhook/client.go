// Package webhook implements ports.Driver for a generic JSON SMS gateway.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storekd-sms/internal/config"
	"storekd-sms/internal/domain"
)

// Client posts one JSON request per recipient to the gateway's /send endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// New creates a Client targeting the configured base URL.
func New(cfg config.Webhook, log *zap.SugaredLogger) (*Client, error) {
	if cfg.URL == "" {
		return nil, &domain.ConfigurationError{Component: "webhook", Field: "url"}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}, nil
}

type sendRequest struct {
	MessageID   string `json:"message_id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Body        string `json:"body"`
	Flash       bool   `json:"flash,omitempty"`
	CallbackURI string `json:"callback_uri,omitempty"`
}

// Send posts the message once per recipient and returns the recipients the gateway rejected.
func (c *Client) Send(ctx context.Context, msg *domain.Message) (domain.FailureSet, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	failures := domain.FailureSet{}
	for _, to := range msg.To {
		if err := c.post(ctx, msg, to); err != nil {
			c.log.Warnw("recipient delivery failed", "error", &domain.RecipientFailure{Recipient: to, Err: err})
			failures = append(failures, to)
		}
	}
	return failures, nil
}

func (c *Client) post(ctx context.Context, msg *domain.Message, to string) error {
	body, err := json.Marshal(sendRequest{
		MessageID:   uuid.NewString(),
		From:        msg.From,
		To:          to,
		Body:        msg.Content,
		Flash:       msg.AsFlash,
		CallbackURI: msg.CallbackURI,
	})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("provider returned %d", resp.StatusCode)
	}
	return nil
}
