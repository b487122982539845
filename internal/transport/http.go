package transport

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storekd-sms/internal/app"
	"storekd-sms/internal/domain"
)

// Handler holds the HTTP handlers for the texting API.
type Handler struct {
	svc *app.TextingService
	log *zap.SugaredLogger
}

// NewHandler wires up a Handler with its dependencies.
func NewHandler(svc *app.TextingService, log *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts all routes onto the given Fiber router.
func (h *Handler) Register(router fiber.Router) {
	router.Post("/texts", h.SendText)
	router.Post("/textables/:kind", h.DispatchTextable)
}

type sendTextRequest struct {
	Texter      string   `json:"texter"`
	From        string   `json:"from"`
	To          []string `json:"to"`
	Content     string   `json:"content"`
	AsFlash     bool     `json:"as_flash"`
	CallbackURI string   `json:"callback_uri"`
}

type sendResponse struct {
	Queued   bool     `json:"queued"`
	Failures []string `json:"failures"`
}

// SendText sends raw content.
//
// POST /texts
// Body: { "texter": "...", "from": "...", "to": ["..."], "content": "...", "as_flash": false, "callback_uri": "..." }
func (h *Handler) SendText(c *fiber.Ctx) error {
	var req sendTextRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	failures, err := h.svc.SendText(c.UserContext(), app.SendTextRequest{
		Texter:      req.Texter,
		From:        req.From,
		To:          req.To,
		Content:     req.Content,
		AsFlash:     req.AsFlash,
		CallbackURI: req.CallbackURI,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(sendResponse{Failures: nonNil(failures)})
}

type dispatchRequest struct {
	Payload      json.RawMessage `json:"payload"`
	To           []string        `json:"to"`
	Texter       string          `json:"texter"`
	Mode         string          `json:"mode"`
	Queue        string          `json:"queue"`
	DelaySeconds int             `json:"delay_seconds"`
}

// DispatchTextable sends or queues a registered template.
//
// POST /textables/:kind
// Body: { "payload": {...}, "to": ["..."], "texter": "...", "mode": "send"|"queue"|"later", "queue": "...", "delay_seconds": 60 }
func (h *Handler) DispatchTextable(c *fiber.Ctx) error {
	var req dispatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	res, err := h.svc.Dispatch(c.UserContext(), app.DispatchRequest{
		Kind:    c.Params("kind"),
		Payload: req.Payload,
		To:      req.To,
		Texter:  req.Texter,
		Mode:    req.Mode,
		Queue:   req.Queue,
		Delay:   time.Duration(req.DelaySeconds) * time.Second,
	})
	if err != nil {
		return h.fail(c, err)
	}

	if res.Queued {
		return c.Status(fiber.StatusAccepted).JSON(sendResponse{Queued: true, Failures: []string{}})
	}
	return c.JSON(sendResponse{Failures: nonNil(res.Failures)})
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		h.log.Errorw("request failed", "path", c.Path(), "error", err)
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTexterNotDefined):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidMessage):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrDispatchType),
		errors.Is(err, domain.ErrRecipientResolution),
		errors.Is(err, app.ErrInvalidRequest):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func nonNil(f domain.FailureSet) []string {
	if f == nil {
		return []string{}
	}
	return f
}
