package wittyflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"storekd-sms/internal/config"
	"storekd-sms/internal/domain"
)

type recorder struct {
	mu     sync.Mutex
	fail   map[string]bool
	hits   atomic.Int32
	params []url.Values
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hits.Add(1)
	q := req.URL.Query()
	r.mu.Lock()
	r.params = append(r.params, q)
	r.mu.Unlock()

	if req.URL.Path != "/v1/messages/send" || req.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.fail[q.Get("to")] {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func newTestClient(t *testing.T, rec *recorder, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	c, err := New(config.Wittyflow{
		AppID:               "app",
		AppSecret:           "secret",
		BaseURI:             srv.URL,
		SendMessageEndpoint: "/v1/messages/send",
	}, append(opts, WithHTTPClient(srv.Client()))...)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return c
}

func message(to ...string) *domain.Message {
	return domain.NewMessage("Hello").SetFrom("Eben Gen").SetTo(to, true)
}

func TestNewRequiresCredentials(t *testing.T) {
	full := config.Wittyflow{AppID: "a", AppSecret: "s", BaseURI: "http://x", SendMessageEndpoint: "/send"}
	tests := []struct {
		field string
		edit  func(*config.Wittyflow)
	}{
		{"app_id", func(c *config.Wittyflow) { c.AppID = "" }},
		{"app_secret", func(c *config.Wittyflow) { c.AppSecret = "" }},
		{"base_uri", func(c *config.Wittyflow) { c.BaseURI = "" }},
		{"send_message_endpoint", func(c *config.Wittyflow) { c.SendMessageEndpoint = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			cfg := full
			tt.edit(&cfg)
			_, err := New(cfg)
			var cerr *domain.ConfigurationError
			if !errors.As(err, &cerr) || cerr.Field != tt.field {
				t.Fatalf("New() = %v, want missing %s", err, tt.field)
			}
		})
	}
}

func TestSendQueryParameters(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	msg := message("+233509297419").SetCallbackURI("https://example.com/status")
	failures, err := c.Send(context.Background(), msg)
	if err != nil || !failures.Empty() {
		t.Fatalf("send = %v, %v", failures, err)
	}

	q := rec.params[0]
	want := map[string]string{
		"app_id":       "app",
		"app_secret":   "secret",
		"from":         "Eben Gen",
		"to":           "233509297419",
		"message":      "Hello",
		"type":         "1",
		"callback_uri": "https://example.com/status",
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestSendFlashType(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	if _, err := c.Send(context.Background(), message("+233509297419").SetAsFlash(true)); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := rec.params[0].Get("type"); got != "0" {
		t.Fatalf("type = %q, want 0", got)
	}
	if rec.params[0].Has("callback_uri") {
		t.Fatal("callback_uri sent without being set")
	}
}

func TestSendPartialFailure(t *testing.T) {
	rec := &recorder{fail: map[string]bool{"233500000000": true}}
	c := newTestClient(t, rec)

	failures, err := c.Send(context.Background(), message("+233509297419", "+233500000000", "+233501112222"))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(failures) != 1 || !failures.Contains("+233500000000") {
		t.Fatalf("failures = %v", failures)
	}
	if rec.hits.Load() != 3 {
		t.Fatalf("hits = %d, want one per recipient", rec.hits.Load())
	}
}

func TestSendInvalidMessageMakesNoRequest(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	_, err := c.Send(context.Background(), domain.NewMessage("Hello").AddTo("+233509297419"))
	if !errors.Is(err, domain.ErrInvalidMessage) {
		t.Fatalf("expected invalid message, got %v", err)
	}
	if rec.hits.Load() != 0 {
		t.Fatal("request made for invalid message")
	}
}

func TestSendConcurrent(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec, WithConcurrency(4))

	to := []string{"+2331", "+2332", "+2333", "+2334", "+2335", "+2336", "+2337", "+2338"}
	failures, err := c.Send(context.Background(), message(to...))
	if err != nil || !failures.Empty() {
		t.Fatalf("send = %v, %v", failures, err)
	}
	if rec.hits.Load() != int32(len(to)) {
		t.Fatalf("hits = %d", rec.hits.Load())
	}
}

func TestSendTransportError(t *testing.T) {
	c, err := New(config.Wittyflow{
		AppID:               "app",
		AppSecret:           "secret",
		BaseURI:             "http://127.0.0.1:1",
		SendMessageEndpoint: "/send",
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	failures, err := c.Send(context.Background(), message("+233509297419"))
	if err != nil {
		t.Fatalf("transport errors must not escape: %v", err)
	}
	if !failures.Contains("+233509297419") {
		t.Fatalf("failures = %v", failures)
	}
}

func TestFormatPhoneNumber(t *testing.T) {
	tests := map[string]string{
		"+233509297419": "233509297419",
		"0509297419":    "509297419",
		"":              "",
	}
	for in, want := range tests {
		if got := formatPhoneNumber(in); got != want {
			t.Errorf("formatPhoneNumber(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSendKeepsEndpointQuery(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	c, err := New(config.Wittyflow{
		AppID:               "app",
		AppSecret:           "secret",
		BaseURI:             srv.URL,
		SendMessageEndpoint: "/v1/messages/send?version=2",
	}, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	failures, err := c.Send(context.Background(), message("+233509297419"))
	if err != nil || !failures.Empty() {
		t.Fatalf("send = %v, %v", failures, err)
	}
	q := rec.params[0]
	if q.Get("version") != "2" || q.Get("to") != "233509297419" || q.Get("app_id") != "app" {
		t.Fatalf("query = %v", q)
	}
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(config.Wittyflow{AppID: "a", AppSecret: "s", BaseURI: "not a url", SendMessageEndpoint: "/send"})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
