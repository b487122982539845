package sms

import (
	"fmt"
	"reflect"
	"slices"
	"time"

	"storekd-sms/internal/domain"
)

// Textable is a typed message template that knows how to build itself into a
// Message. Concrete templates embed Text and implement Build.
type Textable interface {
	// Build translates the template's domain data into sender, recipients and content.
	Build() error

	text() *Text
}

// ShouldQueue marks a Textable that Texter.Send pushes onto the queue instead of sending.
type ShouldQueue interface {
	ShouldQueue() bool
}

// Retryable declares how many times a queued Textable may be attempted.
type Retryable interface {
	Tries() int
}

// TimeLimited declares how long a queued Textable may run.
type TimeLimited interface {
	Timeout() time.Duration
}

// BackingOff declares the delay before the given retry attempt (1-based).
type BackingOff interface {
	RetryAfter(attempt int) time.Duration
}

// FailureHook is invoked once a queued Textable has exhausted its attempts.
type FailureHook interface {
	Failed(err error)
}

// PhoneRoutable is implemented by recipients that expose the number texts should go to.
type PhoneRoutable interface {
	RouteSMSValue() string
}

// PhoneHolder is the fallback for recipients carrying a plain phone attribute.
type PhoneHolder interface {
	Phone() string
}

// Text carries the dispatch fields shared by every Textable.
type Text struct {
	Body           string        `json:"message,omitempty"`
	Sender         string        `json:"from,omitempty"`
	Recipients     []string      `json:"to,omitempty"`
	Flash          bool          `json:"as_flash,omitempty"`
	Callback       string        `json:"callback_uri,omitempty"`
	TexterName     string        `json:"texter,omitempty"`
	QueueName      string        `json:"queue,omitempty"`
	ConnectionName string        `json:"connection,omitempty"`
	QueueDelay     time.Duration `json:"delay,omitempty"`
}

func (t *Text) text() *Text { return t }

// Content sets the message body.
func (t *Text) Content(body string) *Text {
	t.Body = body
	return t
}

// From sets the sender of the message.
func (t *Text) From(name string) *Text {
	t.Sender = name
	return t
}

// To appends recipients. Each one may be a phone number string, a []string,
// a PhoneRoutable, a PhoneHolder or a slice of those.
func (t *Text) To(recipients ...any) error {
	phones, err := normalizeRecipients(recipients)
	if err != nil {
		return err
	}
	t.Recipients = append(t.Recipients, phones...)
	return nil
}

// AsFlash sets whether the message is delivered as a flash message.
func (t *Text) AsFlash(asFlash bool) *Text {
	t.Flash = asFlash
	return t
}

// CallbackURI sets the status report webhook.
func (t *Text) CallbackURI(uri string) *Text {
	t.Callback = uri
	return t
}

// Texter sets the name of the texter that should send the message.
func (t *Text) Texter(name string) *Text {
	t.TexterName = name
	return t
}

// OnQueue sets the queue the message is pushed onto when queued.
func (t *Text) OnQueue(queue string) *Text {
	t.QueueName = queue
	return t
}

// OnConnection sets the queue connection used when queued.
func (t *Text) OnConnection(connection string) *Text {
	t.ConnectionName = connection
	return t
}

// DelayBy makes queueing defer delivery by d.
func (t *Text) DelayBy(d time.Duration) *Text {
	t.QueueDelay = d
	return t
}

// HasFrom reports whether name is the sender.
func (t *Text) HasFrom(name string) bool {
	return t.Sender == name
}

// HasTo reports whether the recipient is already set.
func (t *Text) HasTo(recipient any) bool {
	phones, err := normalizeRecipients([]any{recipient})
	if err != nil || len(phones) == 0 {
		return false
	}
	return slices.Contains(t.Recipients, phones[0])
}

// When applies fn if cond holds, otherwise applies otherwise when given.
func (t *Text) When(cond bool, fn func(*Text), otherwise func(*Text)) *Text {
	switch {
	case cond && fn != nil:
		fn(t)
	case !cond && otherwise != nil:
		otherwise(t)
	}
	return t
}

// overlay copies every non-empty dispatch field onto msg.
func (t *Text) overlay(msg *domain.Message) {
	if t.Sender != "" {
		msg.SetFrom(t.Sender)
	}
	for _, recipient := range t.Recipients {
		msg.AddTo(recipient)
	}
	if t.Flash {
		msg.SetAsFlash(true)
	}
	if t.Callback != "" {
		msg.SetCallbackURI(t.Callback)
	}
}

// Clone returns a copy of t whose recipient list is not shared with the original.
func Clone[T any, PT interface {
	*T
	Textable
}](t PT) PT {
	c := PT(new(T))
	*c = *t
	c.text().Recipients = slices.Clone(t.text().Recipients)
	return c
}

// isTextable reports whether t holds a usable template; a typed nil pointer does not.
func isTextable(t Textable) bool {
	if t == nil {
		return false
	}
	v := reflect.ValueOf(t)
	return v.Kind() != reflect.Pointer || !v.IsNil()
}

func normalizeRecipients(recipients []any) ([]string, error) {
	var out []string
	for _, r := range recipients {
		switch v := r.(type) {
		case []string:
			out = append(out, v...)
		case []any:
			nested, err := normalizeRecipients(v)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		default:
			phone, err := normalizeRecipient(v)
			if err != nil {
				return nil, err
			}
			out = append(out, phone)
		}
	}
	return out, nil
}

func normalizeRecipient(r any) (string, error) {
	switch v := r.(type) {
	case string:
		return v, nil
	case PhoneRoutable:
		if phone := v.RouteSMSValue(); phone != "" {
			return phone, nil
		}
	}
	if v, ok := r.(PhoneHolder); ok && v.Phone() != "" {
		return v.Phone(), nil
	}
	return "", fmt.Errorf("%w from %T", domain.ErrRecipientResolution, r)
}
