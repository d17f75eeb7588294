package handlers

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/agriconnect/whatsapp-backend/internal/metrics"
	"github.com/agriconnect/whatsapp-backend/internal/models"
	"github.com/agriconnect/whatsapp-backend/internal/services"
	"github.com/agriconnect/whatsapp-backend/pkg/logger"
)

// MessageHandler runs one conversation transition per inbound message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, userID, text string) (*services.Transition, error)
}

// WhatsAppHandler handles WhatsApp webhook requests
type WhatsAppHandler struct {
	engine      MessageHandler
	verifyToken string
	metrics     *metrics.BotMetrics
	logger      *logger.Logger
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(engine MessageHandler, verifyToken string, m *metrics.BotMetrics, log *logger.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{
		engine:      engine,
		verifyToken: verifyToken,
		metrics:     m,
		logger:      logger.OrGlobal(log),
	}
}

// VerifyWebhook answers the subscription handshake by echoing hub.challenge.
func (h *WhatsAppHandler) VerifyWebhook(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) == 1 {
		h.logger.Info("webhook verified successfully")
		return c.SendString(challenge)
	}

	h.logger.Warn("webhook verification rejected", zap.String("mode", mode))
	return c.Status(fiber.StatusForbidden).SendString("Forbidden")
}

// HandleWebhook processes incoming WhatsApp messages. It always acknowledges so the
// provider does not redeliver; anything it cannot use is ignored.
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	start := time.Now()

	var payload models.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		h.logger.Warn("error parsing webhook", zap.Error(err))
		h.metrics.ObserveInbound("malformed")
		return c.SendString("OK")
	}

	msg, ok := payload.FirstTextMessage()
	if !ok {
		h.metrics.ObserveInbound("ignored")
		return c.SendString("OK")
	}

	h.metrics.ObserveInbound("message")
	h.logger.Info("whatsapp message received", zap.String("phone", msg.From), zap.String("message_id", msg.ID))

	if _, err := h.engine.HandleMessage(c.UserContext(), msg.From, msg.Text.Body); err != nil {
		h.logger.Error("error processing message", zap.String("phone", msg.From), zap.Error(err))
	}

	h.metrics.ObserveWebhookLatency("message", time.Since(start).Seconds())
	return c.SendString("OK")
}

// HandleTestWebhook runs a message through the engine and returns the replies (development only).
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload models.TestMessageRequest
	if err := c.BodyParser(&payload); err != nil || payload.From == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	h.logger.Debug("test webhook received", zap.String("phone", payload.From))

	transition, err := h.engine.HandleMessage(c.UserContext(), payload.From, payload.Message)
	if err != nil {
		h.logger.Error("error processing test message", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success":    false,
			"error":      err.Error(),
			"transition": transition,
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"transition": transition,
	})
}
