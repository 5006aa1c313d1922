// file: internals/features/finance/payments/controller/webhook_controller.go
package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"athletiq_backend/internals/configs"
	"athletiq_backend/internals/features/finance/payments/service"
	helper "athletiq_backend/internals/helpers"
	stripegw "athletiq_backend/internals/platform/stripe"
)

// WebhookController receives unauthenticated provider callbacks. Trust comes
// from the signature, not from a session.
type WebhookController struct {
	Processor *service.WebhookProcessor
}

func NewWebhookController(proc *service.WebhookProcessor) *WebhookController {
	return &WebhookController{Processor: proc}
}

// Handle verifies and processes one provider event.
// POST /api/payments/stripe/webhook
func (ctl *WebhookController) Handle(c *fiber.Ctx) error {
	sig := c.Get("Stripe-Signature")
	if sig == "" {
		return helper.Error(c, fiber.StatusBadRequest, "Missing signature")
	}

	ev, err := stripegw.ParseWebhookEvent(c.Context(), c.Body(), sig, configs.StripeWebhookSecret)
	if err != nil {
		log.Printf("[WARN] rejected webhook: %v", err)
		return helper.Error(c, fiber.StatusBadRequest, "Invalid webhook payload")
	}

	if err := ctl.Processor.Process(c.Context(), ev); err != nil {
		// Unresolvable identity is worth a provider retry; anything else is
		// acknowledged so the provider stops, and the ledger row keeps the
		// error for manual replay.
		if errors.Is(err, service.ErrUserUnresolved) || errors.Is(err, service.ErrNoLinesResolved) {
			log.Printf("[ERROR] webhook event %s unresolvable: %v", ev.EventID, err)
			return helper.Error(c, fiber.StatusUnprocessableEntity, "Could not resolve event")
		}
		log.Printf("[ERROR] process webhook event %s: %v", ev.EventID, err)
	}

	return helper.Success(c, "Event received", fiber.Map{"event_id": ev.EventID})
}
