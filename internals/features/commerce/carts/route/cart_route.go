// file: internals/features/commerce/carts/route/cart_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"athletiq_backend/internals/features/commerce/carts/controller"
)

// CartRoutes mounts the cart endpoints under an authenticated group.
func CartRoutes(grp fiber.Router, db *gorm.DB) {
	ctl := controller.NewCartController(db)

	cart := grp.Group("/cart")
	cart.Get("/", ctl.List)
	cart.Post("/", ctl.Add)
	cart.Patch("/:id", ctl.UpdateQuantity)
	cart.Delete("/:id", ctl.Remove)
}
