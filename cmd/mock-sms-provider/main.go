package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storekd-sms/internal/logger"
)

// webhookSendRequest mirrors what the webhook driver posts to /send.
type webhookSendRequest struct {
	MessageID   string `json:"message_id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Body        string `json:"body"`
	Flash       bool   `json:"flash"`
	CallbackURI string `json:"callback_uri"`
}

type statusReport struct {
	MessageID string `json:"message_id"`
	To        string `json:"to"`
	Status    string `json:"status"`
}

func main() {
	log := logger.Must(getenv("APP_ENV", "development"), "mock-sms-provider")
	defer log.Sync() //nolint:errcheck

	addr := getenv("HTTP_ADDR", ":9090")
	endpoint := getenv("MOCK_SEND_ENDPOINT", "/v1/messages/send")
	failing := strings.Split(os.Getenv("MOCK_FAIL_NUMBERS"), ",")

	fiberApp := fiber.New(fiber.Config{AppName: "mock-sms-provider"})

	// GET <endpoint> emulates the Wittyflow send API, one recipient per call.
	fiberApp.Get(endpoint, func(c *fiber.Ctx) error {
		for _, p := range []string{"app_id", "app_secret", "from", "to", "message", "type"} {
			if c.Query(p) == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": p + " is required"})
			}
		}
		to := c.Query("to")
		if slices.Contains(failing, to) || slices.Contains(failing, "+"+to) {
			log.Warnw("mock provider rejecting recipient", "to", to)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "recipient unreachable"})
		}

		id := uuid.NewString()
		log.Infow("mock provider received message",
			"message_id", id,
			"from", c.Query("from"),
			"to", to,
			"type", c.Query("type"),
		)
		if hook := c.Query("callback_uri"); hook != "" {
			go simulateStatusReport(hook, statusReport{MessageID: id, To: to, Status: "delivered"}, log)
		}
		return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{"message_id": id}})
	})

	// POST /send accepts submissions from the webhook driver.
	fiberApp.Post("/send", func(c *fiber.Ctx) error {
		var req webhookSendRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
		if slices.Contains(failing, req.To) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "recipient unreachable"})
		}

		log.Infow("mock provider received message", "message_id", req.MessageID, "to", req.To)
		if req.CallbackURI != "" {
			go simulateStatusReport(req.CallbackURI, statusReport{MessageID: req.MessageID, To: req.To, Status: "delivered"}, log)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"provider_id": uuid.NewString()})
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infow("mock-sms-provider listening", "addr", addr, "endpoint", endpoint)
		if err := fiberApp.Listen(addr); err != nil {
			log.Errorw("fiber listen", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down mock-sms-provider")
	_ = fiberApp.Shutdown()
}

// simulateStatusReport posts a delivery report to the callback URI after a short delay.
func simulateStatusReport(hookURL string, report statusReport, log *zap.SugaredLogger) {
	time.Sleep(500 * time.Millisecond)

	body, _ := json.Marshal(report)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hookURL, bytes.NewReader(body))
	if err != nil {
		log.Errorw("create status report request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Errorw("status report call failed", "message_id", report.MessageID, "error", err)
		return
	}
	defer resp.Body.Close()
	log.Infow("status report sent", "message_id", report.MessageID, "status", resp.StatusCode)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
