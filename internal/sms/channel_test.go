package sms

import (
	"context"
	"slices"
	"testing"
)

type routedUser struct{ route, contact string }

func (u routedUser) RouteNotificationForSMS() string { return u.route }
func (u routedUser) ContactPhone() string            { return u.contact }

type notificationFunc func(notifiable any) any

func (f notificationFunc) ToSMS(notifiable any) any { return f(notifiable) }

func TestChannelSendsTextable(t *testing.T) {
	d := &fakeDriver{}
	c := NewChannel(NewManager(smsConfig(), fakeDrivers(d, nil)))

	n := notificationFunc(func(any) any { return &greeting{Name: "Ama", Phone: "+233501112222"} })
	if _, err := c.Notify(context.Background(), routedUser{}, n); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if d.last().Content != "Hello Ama" {
		t.Fatalf("unexpected message %+v", d.last())
	}
}

func TestChannelSendsMessageToRoute(t *testing.T) {
	tests := []struct {
		name string
		user routedUser
		want []string
	}{
		{"route", routedUser{route: "+233501112222", contact: "+233209999999"}, []string{"+233501112222"}},
		{"contact fallback", routedUser{contact: "+233209999999"}, []string{"+233209999999"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDriver{}
			c := NewChannel(NewManager(smsConfig(), fakeDrivers(d, nil)))

			n := notificationFunc(func(any) any {
				return ChannelMessage{Content: "Your order shipped", AsFlash: true}
			})
			if _, err := c.Notify(context.Background(), tt.user, n); err != nil {
				t.Fatalf("notify: %v", err)
			}
			got := d.last()
			if !slices.Equal(got.To, tt.want) || !got.AsFlash || got.From != "Eben Gen" {
				t.Fatalf("unexpected message %+v", got)
			}
		})
	}
}

func TestChannelSkipsUnroutableNotifiable(t *testing.T) {
	d := &fakeDriver{}
	c := NewChannel(NewManager(smsConfig(), fakeDrivers(d, nil)))

	n := notificationFunc(func(any) any { return &ChannelMessage{Content: "hi"} })
	failures, err := c.Notify(context.Background(), routedUser{}, n)
	if err != nil || failures != nil {
		t.Fatalf("notify = %v, %v", failures, err)
	}
	if d.calls != 0 {
		t.Fatal("driver invoked without a recipient")
	}
}
