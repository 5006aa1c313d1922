// file: internals/features/commerce/checkout/route/checkout_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"athletiq_backend/internals/configs"
	"athletiq_backend/internals/features/commerce/checkout/controller"
	"athletiq_backend/internals/features/commerce/checkout/service"
	stripegw "athletiq_backend/internals/platform/stripe"
)

// CheckoutRoutes mounts the checkout endpoint under an authenticated group.
func CheckoutRoutes(grp fiber.Router, db *gorm.DB) {
	svc := service.NewCheckoutService(
		service.NewGormStore(db),
		stripegw.NewClient(),
		configs.GetEnv("CHECKOUT_SUCCESS_URL"),
		configs.GetEnv("CHECKOUT_CANCEL_URL"),
	)
	ctl := controller.NewCheckoutController(svc)

	grp.Post("/checkout", ctl.Create)
}
