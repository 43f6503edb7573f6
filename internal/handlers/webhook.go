package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"sevapoint/internal/apperrors"
	"sevapoint/internal/services/gateway"
	"sevapoint/internal/utils"
)

type WebhookHandler struct {
	gatewayService *gateway.Service
}

func NewWebhookHandler(gatewayService *gateway.Service) *WebhookHandler {
	return &WebhookHandler{gatewayService: gatewayService}
}

// HandleRazorpayWebhook receives gateway notifications. Signature failures
// return 403 and are never retried; processing failures return 500 so the
// gateway redelivers, which the ledger's reference constraint makes safe.
func (h *WebhookHandler) HandleRazorpayWebhook(c *fiber.Ctx) error {
	signature := c.Get("X-Razorpay-Signature")
	body := c.Body()

	if err := h.gatewayService.HandleEvent(c.Context(), body, signature); err != nil {
		if errors.Is(err, apperrors.ErrInvalidSignature) {
			return utils.Forbidden(c, "invalid signature")
		}
		log.Printf("webhook processing failed: %v", err)
		return utils.InternalError(c, "webhook processing failed")
	}

	return utils.Success(c, fiber.Map{"status": "ok"})
}
