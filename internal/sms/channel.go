package sms

import (
	"context"

	"storekd-sms/internal/domain"
)

// Notifiable is implemented by entities that name the phone their notifications go to.
type Notifiable interface {
	RouteNotificationForSMS() string
}

// ContactPhoner is the fallback for entities exposing a contact phone.
type ContactPhoner interface {
	ContactPhone() string
}

// Notification renders itself for the SMS channel. ToSMS returns either a
// Textable or a ChannelMessage.
type Notification interface {
	ToSMS(notifiable any) any
}

// ChannelMessage is a simple notification payload sent to the notifiable's route.
type ChannelMessage struct {
	Content     string
	From        string
	AsFlash     bool
	CallbackURI string
}

// Channel delivers notifications as text messages.
type Channel struct {
	sender Sender
}

func NewChannel(sender Sender) *Channel {
	return &Channel{sender: sender}
}

// Notify sends n to notifiable. Nothing is sent when n renders a ChannelMessage
// and notifiable exposes neither a route nor a contact phone.
func (c *Channel) Notify(ctx context.Context, notifiable any, n Notification) (domain.FailureSet, error) {
	switch msg := n.ToSMS(notifiable).(type) {
	case nil:
		return nil, nil
	case Textable:
		if !isTextable(msg) {
			return nil, nil
		}
		return c.sender.Send(ctx, msg)
	case ChannelMessage:
		return c.sendMessage(ctx, notifiable, &msg)
	case *ChannelMessage:
		if msg == nil {
			return nil, nil
		}
		return c.sendMessage(ctx, notifiable, msg)
	}
	return nil, domain.ErrDispatchType
}

func (c *Channel) sendMessage(ctx context.Context, notifiable any, msg *ChannelMessage) (domain.FailureSet, error) {
	to := recipient(notifiable)
	if to == "" {
		return nil, nil
	}

	return c.sender.SendRaw(ctx, msg.Content, func(m *domain.Message) {
		m.AddTo(to)
		if msg.From != "" {
			m.SetFrom(msg.From)
		}
		if msg.AsFlash {
			m.SetAsFlash(true)
		}
		if msg.CallbackURI != "" {
			m.SetCallbackURI(msg.CallbackURI)
		}
	})
}

func recipient(notifiable any) string {
	if r, ok := notifiable.(Notifiable); ok {
		if phone := r.RouteNotificationForSMS(); phone != "" {
			return phone
		}
	}
	if c, ok := notifiable.(ContactPhoner); ok {
		return c.ContactPhone()
	}
	return ""
}
