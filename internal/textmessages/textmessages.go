// Package textmessages holds the text templates the store sends.
package textmessages

import (
	"fmt"
	"time"

	"storekd-sms/internal/domain"
	"storekd-sms/internal/sms"
)

// Kind names used on the queue and by the HTTP API.
const (
	KindLoginCredentials     = "login_credentials"
	KindLoginCredentialsText = "login_credentials_text"
	KindNewSale              = "new_sale"
	KindPlain                = "plain"
)

const (
	companySender = "Storekd Inc"
	brandSender   = "Eben Gen"
)

// Register binds every template to its kind name.
func Register(kinds *sms.Kinds) *sms.Kinds {
	kinds.Register(KindLoginCredentials, func() sms.Textable { return &LoginCredentials{} })
	kinds.Register(KindLoginCredentialsText, func() sms.Textable { return &LoginCredentialsTextMessage{} })
	kinds.Register(KindNewSale, func() sms.Textable { return &NewSaleTextMessage{} })
	kinds.Register(KindPlain, func() sms.Textable { return &PlainText{} })
	return kinds
}

// LoginCredentials tells a user their temporary password. Recipients are
// supplied by the caller.
type LoginCredentials struct {
	sms.Text
	User         User   `json:"user"`
	TempPassword string `json:"temp_password"`
}

func NewLoginCredentials(user User, tempPassword string) *LoginCredentials {
	return &LoginCredentials{User: user, TempPassword: tempPassword}
}

func (m *LoginCredentials) ShouldQueue() bool { return true }

func (m *LoginCredentials) Build() error {
	m.From(companySender).Content(
		"Hello " + m.User.FullName + ",\n" +
			"Your login password is: " + m.TempPassword,
	)
	return nil
}

// LoginCredentialsTextMessage sends a new user their username and password.
type LoginCredentialsTextMessage struct {
	sms.Text
	User     User   `json:"user"`
	Password string `json:"password"`
}

func NewLoginCredentialsTextMessage(user User, password string) *LoginCredentialsTextMessage {
	return &LoginCredentialsTextMessage{User: user, Password: password}
}

func (m *LoginCredentialsTextMessage) ShouldQueue() bool { return true }

func (m *LoginCredentialsTextMessage) Build() error {
	if err := m.To(m.User.PhoneNumber); err != nil {
		return err
	}
	m.From(brandSender).Content(fmt.Sprintf(
		"Hello %s, \nKindly find your login credentials below: \n\nUsername: %s \nPassword: %s",
		m.User.FullName, m.User.Username, m.Password,
	))
	return nil
}

// NewSaleTextMessage thanks a customer for a purchase.
type NewSaleTextMessage struct {
	sms.Text
	Receipt Receipt `json:"receipt"`
}

func NewNewSaleTextMessage(receipt Receipt) *NewSaleTextMessage {
	return &NewSaleTextMessage{Receipt: receipt}
}

func (m *NewSaleTextMessage) ShouldQueue() bool { return true }

func (m *NewSaleTextMessage) Tries() int { return 3 }

func (m *NewSaleTextMessage) Timeout() time.Duration { return 30 * time.Second }

// RetryAfter backs off ten seconds per attempt.
func (m *NewSaleTextMessage) RetryAfter(attempt int) time.Duration {
	return time.Duration(attempt) * 10 * time.Second
}

func (m *NewSaleTextMessage) Build() error {
	if err := m.To(m.Receipt.CustomerPhone); err != nil {
		return err
	}
	// TODO: switch the sender to brandSender once the sender ID is approved.
	m.From(companySender).Content(fmt.Sprintf(
		"Hello %s,\nThank you for purchasing at Eben Genesis.\nYour receipt number is: #0000%d.",
		m.Receipt.CustomerName, m.Receipt.ID,
	))
	return nil
}

// PlainText sends caller-supplied content as is.
type PlainText struct {
	sms.Text
	Queued bool `json:"queued,omitempty"`
}

func NewPlainText(content string) *PlainText {
	p := &PlainText{}
	p.Content(content)
	return p
}

func (m *PlainText) ShouldQueue() bool { return m.Queued }

func (m *PlainText) Build() error {
	if m.Body == "" {
		return &domain.MessageValidationError{Field: "content"}
	}
	return nil
}
