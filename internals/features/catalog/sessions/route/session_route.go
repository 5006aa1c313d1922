// file: internals/features/catalog/sessions/route/session_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	sessioncontroller "athletiq_backend/internals/features/catalog/sessions/controller"
	sessionservice "athletiq_backend/internals/features/catalog/sessions/service"
	stripegw "athletiq_backend/internals/platform/stripe"
)

func SessionPublicRoutes(grp fiber.Router, db *gorm.DB) {
	ctrl := sessioncontroller.NewSessionPublicController(db)

	grp.Get("/sessions", ctrl.List)
	grp.Get("/sessions/:id", ctrl.Detail)
}

func SessionAdminRoutes(grp fiber.Router, db *gorm.DB) {
	sync := sessionservice.NewSyncService(sessionservice.NewGormStore(db), stripegw.NewClient())
	ctrl := sessioncontroller.NewSessionAdminController(db, sync)

	grp.Post("/sessions", ctrl.Create)
	grp.Patch("/sessions/:id", ctrl.Update)
	grp.Patch("/sessions/:id/active", ctrl.ToggleActive)
	grp.Post("/sessions/:id/banner", ctrl.UploadBanner)
	grp.Get("/sessions/:id/roster.csv", ctrl.ExportRosterCSV)
}
