// file: internals/features/users/athletes/route/athlete_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	athletecontroller "athletiq_backend/internals/features/users/athletes/controller"
)

func AthleteRoutes(grp fiber.Router, db *gorm.DB) {
	ctrl := athletecontroller.NewAthleteController(db)

	grp.Post("/athletes", ctrl.Create)
	grp.Get("/athletes", ctrl.List)
	grp.Patch("/athletes/:id", ctrl.Update)
	grp.Delete("/athletes/:id", ctrl.Delete)
}
