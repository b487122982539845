package sms

import (
	"context"

	"storekd-sms/internal/domain"
	"storekd-sms/internal/ports"
)

// Client decouples a Texter from the concrete Driver it sends through.
type Client struct {
	driver ports.Driver
}

// NewClient wraps driver.
func NewClient(driver ports.Driver) *Client {
	return &Client{driver: driver}
}

// Send delegates to the driver and stores the recipients it could not reach in failures.
func (c *Client) Send(ctx context.Context, msg *domain.Message, failures *domain.FailureSet) error {
	failed, err := c.driver.Send(ctx, msg)
	if err != nil {
		return err
	}
	*failures = failed
	return nil
}
