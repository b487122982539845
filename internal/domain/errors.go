package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrConfiguration       = errors.New("invalid sms configuration")
	ErrTexterNotDefined    = errors.New("texter is not defined")
	ErrInvalidMessage      = errors.New("invalid message")
	ErrDispatchType        = errors.New("only textables may be queued")
	ErrRecipientResolution = errors.New("could not retrieve a phone value")
	ErrUnknownKind         = errors.New("unknown textable kind")
)

// ConfigurationError reports missing or invalid provider/texter settings.
// It is raised while resolving a texter, never during an in-flight send.
type ConfigurationError struct {
	Component string
	Field     string
	Err       error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Component, e.Err)
	}
	return fmt.Sprintf("%s: %s not set", e.Component, e.Field)
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfiguration}
	}
	return []error{ErrConfiguration, e.Err}
}

// MessageValidationError reports a Message missing from, to or content.
type MessageValidationError struct {
	Field string
}

func (e *MessageValidationError) Error() string {
	switch e.Field {
	case "from":
		return "a sender is not set on the message"
	case "to":
		return "a recipient is not set on the message"
	case "content":
		return "the message content is empty"
	}
	return "message is nil"
}

func (e *MessageValidationError) Unwrap() error { return ErrInvalidMessage }

// RecipientFailure is a transport failure for one recipient. Drivers log it and
// record the recipient in the FailureSet; it never escapes a send call.
type RecipientFailure struct {
	Recipient string
	Err       error
}

func (e *RecipientFailure) Error() string {
	return fmt.Sprintf("deliver to %s: %v", e.Recipient, e.Err)
}

func (e *RecipientFailure) Unwrap() error { return e.Err }
