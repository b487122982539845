// Package wittyflow implements ports.Driver for the Wittyflow SMS gateway.
package wittyflow

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storekd-sms/internal/config"
	"storekd-sms/internal/domain"
)

const (
	typeFlash = 0
	typePlain = 1
)

// Client sends one GET request per recipient to base_uri + send_message_endpoint.
// Query parameters already present on the endpoint are kept.
type Client struct {
	appID       string
	appSecret   string
	endpoint    *url.URL
	concurrency int
	httpClient  *http.Client
	log         *zap.SugaredLogger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithConcurrency bounds how many recipients are texted at once. 1 is sequential.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the logger used for per-recipient failures.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New validates the credential block and returns a Client.
// A missing setting is reported as a *domain.ConfigurationError before any request is made.
func New(cfg config.Wittyflow, opts ...Option) (*Client, error) {
	for _, field := range []struct{ name, value string }{
		{"app_id", cfg.AppID},
		{"app_secret", cfg.AppSecret},
		{"base_uri", cfg.BaseURI},
		{"send_message_endpoint", cfg.SendMessageEndpoint},
	} {
		if field.value == "" {
			return nil, &domain.ConfigurationError{Component: "wittyflow", Field: field.name}
		}
	}

	endpoint, err := url.Parse(cfg.BaseURI + cfg.SendMessageEndpoint)
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, &domain.ConfigurationError{
			Component: "wittyflow",
			Err:       fmt.Errorf("invalid send url %q", cfg.BaseURI+cfg.SendMessageEndpoint),
		}
	}

	c := &Client{
		appID:       cfg.AppID,
		appSecret:   cfg.AppSecret,
		endpoint:    endpoint,
		concurrency: 1,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		log:         zap.NewNop().Sugar(),
	}
	if cfg.Concurrency > 0 {
		c.concurrency = cfg.Concurrency
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Send texts every recipient independently and returns those that failed.
func (c *Client) Send(ctx context.Context, msg *domain.Message) (domain.FailureSet, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		failures = domain.FailureSet{}
	)

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for _, recipient := range msg.To {
		g.Go(func() error {
			if err := c.textRecipient(ctx, msg, recipient); err != nil {
				c.log.Warnw("recipient delivery failed", "error", &domain.RecipientFailure{Recipient: recipient, Err: err})
				mu.Lock()
				failures = append(failures, recipient)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return failures, nil
}

func (c *Client) textRecipient(ctx context.Context, msg *domain.Message, recipient string) error {
	u := *c.endpoint
	u.RawQuery = c.params(msg, recipient).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("provider returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) params(msg *domain.Message, recipient string) url.Values {
	kind := typePlain
	if msg.AsFlash {
		kind = typeFlash
	}

	v := c.endpoint.Query()
	v.Set("app_id", c.appID)
	v.Set("app_secret", c.appSecret)
	v.Set("from", msg.From)
	v.Set("to", formatPhoneNumber(recipient))
	v.Set("message", msg.Content)
	v.Set("type", strconv.Itoa(kind))
	if msg.CallbackURI != "" {
		v.Set("callback_uri", msg.CallbackURI)
	}
	return v
}

// formatPhoneNumber drops the leading character of an international number, "+233..." becomes "233...".
func formatPhoneNumber(phone string) string {
	_, size := utf8.DecodeRuneInString(phone)
	return phone[size:]
}
