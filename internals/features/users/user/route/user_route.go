// file: internals/features/users/user/route/user_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	usercontroller "athletiq_backend/internals/features/users/user/controller"
)

// UserRoutes mounts the profile endpoints under an authenticated group.
func UserRoutes(grp fiber.Router, db *gorm.DB) {
	ctrl := usercontroller.NewUserController(db)

	grp.Get("/me", ctrl.Me)
	grp.Patch("/me", ctrl.UpdateProfile)
	grp.Post("/me/waiver", ctrl.SignWaiver)
}
