// file: internals/features/commerce/checkout/controller/checkout_controller.go
package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"athletiq_backend/internals/features/commerce/checkout/service"
	helper "athletiq_backend/internals/helpers"
	authhelper "athletiq_backend/internals/helpers/auth"
)

type CheckoutController struct {
	Checkout *service.CheckoutService
}

func NewCheckoutController(svc *service.CheckoutService) *CheckoutController {
	return &CheckoutController{Checkout: svc}
}

// Create starts a hosted checkout for the caller's cart and returns the
// redirect URL. POST /api/u/checkout
func (ctl *CheckoutController) Create(c *fiber.Ctx) error {
	userID, err := authhelper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	url, err := ctl.Checkout.BuildCheckout(c.Context(), userID)
	if err != nil {
		var closed *service.ErrSessionClosed
		switch {
		case errors.Is(err, service.ErrWaiverRequired):
			return helper.Error(c, fiber.StatusForbidden, "Please sign the waiver before checking out")
		case errors.Is(err, service.ErrEmptyCart):
			return helper.Error(c, fiber.StatusBadRequest, "Your cart is empty")
		case errors.As(err, &closed):
			return helper.Error(c, fiber.StatusConflict,
				"Session \""+closed.SessionName+"\" is no longer open. Please remove it from your cart.")
		default:
			log.Printf("[ERROR] build checkout for user %s: %v", userID, err)
			return helper.Error(c, fiber.StatusBadGateway, "Failed to start checkout")
		}
	}

	return helper.Success(c, "Checkout session created", fiber.Map{"checkout_url": url})
}
