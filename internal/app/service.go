package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storekd-sms/internal/domain"
	"storekd-sms/internal/sms"
)

// ErrInvalidRequest reports a dispatch request the service cannot act on.
var ErrInvalidRequest = errors.New("invalid request")

// Dispatch modes.
const (
	ModeSend  = "send"
	ModeQueue = "queue"
	ModeLater = "later"
)

// TextingService is the application service behind the HTTP API.
type TextingService struct {
	manager *sms.Manager
	kinds   *sms.Kinds
	log     *zap.SugaredLogger
}

// NewTextingService wires the service with its dependencies.
func NewTextingService(manager *sms.Manager, kinds *sms.Kinds, log *zap.SugaredLogger) *TextingService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &TextingService{manager: manager, kinds: kinds, log: log}
}

// SendTextRequest is the input for sending raw content.
type SendTextRequest struct {
	Texter      string
	From        string
	To          []string
	Content     string
	AsFlash     bool
	CallbackURI string
}

// SendText sends raw content through the named texter, or the default one.
func (s *TextingService) SendText(ctx context.Context, req SendTextRequest) (domain.FailureSet, error) {
	texter, err := s.manager.Texter(req.Texter)
	if err != nil {
		return nil, err
	}

	failures, err := texter.SendRaw(ctx, req.Content, func(m *domain.Message) {
		if req.From != "" {
			m.SetFrom(req.From)
		}
		m.SetTo(req.To, false)
		if req.AsFlash {
			m.SetAsFlash(true)
		}
		if req.CallbackURI != "" {
			m.SetCallbackURI(req.CallbackURI)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("send text: %w", err)
	}
	return failures, nil
}

// DispatchRequest is the input for sending or queueing a registered template.
type DispatchRequest struct {
	Kind    string
	Payload json.RawMessage
	To      []string
	Texter  string
	Mode    string
	Queue   string
	Delay   time.Duration
}

// DispatchResult reports what happened to a dispatched template.
type DispatchResult struct {
	Queued   bool
	Failures domain.FailureSet
}

// Dispatch decodes the named template and sends, queues or schedules it.
func (s *TextingService) Dispatch(ctx context.Context, req DispatchRequest) (DispatchResult, error) {
	textable, err := s.kinds.Decode(req.Kind, req.Payload)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownKind) {
			return DispatchResult{}, err
		}
		return DispatchResult{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	pending := s.manager.To(req.To)
	if req.Texter != "" {
		setTexter(textable, req.Texter)
	}

	switch req.Mode {
	case "", ModeSend:
		failures, err := pending.Send(ctx, textable)
		if err != nil {
			return DispatchResult{}, fmt.Errorf("send %s: %w", req.Kind, err)
		}
		q, ok := textable.(sms.ShouldQueue)
		queued := ok && q.ShouldQueue()
		s.log.Infow("textable dispatched", "kind", req.Kind, "queued", queued, "failures", len(failures))
		return DispatchResult{Queued: queued, Failures: failures}, nil

	case ModeQueue:
		if err := pending.Queue(ctx, textable, req.Queue); err != nil {
			return DispatchResult{}, fmt.Errorf("queue %s: %w", req.Kind, err)
		}

	case ModeLater:
		if req.Delay <= 0 {
			return DispatchResult{}, fmt.Errorf("%w: later requires a positive delay", ErrInvalidRequest)
		}
		if err := pending.Later(ctx, req.Delay, textable, req.Queue); err != nil {
			return DispatchResult{}, fmt.Errorf("schedule %s: %w", req.Kind, err)
		}

	default:
		return DispatchResult{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, req.Mode)
	}

	s.log.Infow("textable queued", "kind", req.Kind, "mode", req.Mode, "queue", req.Queue, "delay", req.Delay)
	return DispatchResult{Queued: true}, nil
}

// texterSetter is satisfied by every template through the embedded sms.Text.
type texterSetter interface {
	Texter(name string) *sms.Text
}

func setTexter(t sms.Textable, name string) {
	if ts, ok := t.(texterSetter); ok {
		ts.Texter(name)
	}
}
