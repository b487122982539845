package domain

import "slices"

// Message is the provider-agnostic text message handed to a Driver.
// It is mutated only while it is being built; drivers treat it as read-only.
type Message struct {
	From        string   `json:"from,omitempty"`
	To          []string `json:"to"`
	Content     string   `json:"content"`
	AsFlash     bool     `json:"as_flash,omitempty"`
	CallbackURI string   `json:"callback_uri,omitempty"`
}

// NewMessage creates a Message carrying the given content.
func NewMessage(content string) *Message {
	return &Message{Content: content, To: []string{}}
}

// SetFrom sets the sender name or phone number.
func (m *Message) SetFrom(from string) *Message {
	m.From = from
	return m
}

// SetTo appends the recipients, or replaces the recipient list when override is true.
func (m *Message) SetTo(to []string, override bool) *Message {
	if override {
		m.To = slices.Clone(to)
		return m
	}
	m.To = append(m.To, to...)
	return m
}

// AddTo appends a single recipient.
func (m *Message) AddTo(to string) *Message {
	m.To = append(m.To, to)
	return m
}

// SetContent sets the message body.
func (m *Message) SetContent(content string) *Message {
	m.Content = content
	return m
}

// SetAsFlash marks the message as a flash message.
func (m *Message) SetAsFlash(asFlash bool) *Message {
	m.AsFlash = asFlash
	return m
}

// SetCallbackURI sets the status report webhook passed through to the provider.
func (m *Message) SetCallbackURI(uri string) *Message {
	m.CallbackURI = uri
	return m
}

// Validate reports the first missing mandatory field.
func (m *Message) Validate() error {
	switch {
	case m == nil:
		return &MessageValidationError{Field: "message"}
	case m.From == "":
		return &MessageValidationError{Field: "from"}
	case len(m.To) == 0:
		return &MessageValidationError{Field: "to"}
	case m.Content == "":
		return &MessageValidationError{Field: "content"}
	}
	return nil
}

// FailureSet lists the recipients a driver could not reach. Order is not significant.
type FailureSet []string

// Contains reports whether recipient is in the set.
func (f FailureSet) Contains(recipient string) bool {
	return slices.Contains(f, recipient)
}

// Empty reports whether every recipient was reached.
func (f FailureSet) Empty() bool {
	return len(f) == 0
}
