// file: internals/features/notifications/mailer/route/mailer_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"athletiq_backend/internals/configs"
	"athletiq_backend/internals/features/notifications/mailer/controller"
	"athletiq_backend/internals/features/notifications/mailer/service"
	features "athletiq_backend/internals/middlewares/features"
)

// MailerAdminRoutes mounts the broadcast and contact-sync endpoints. Both sit
// behind env feature flags and return 403 until enabled.
func MailerAdminRoutes(grp fiber.Router, db *gorm.DB) {
	broadcast := controller.NewBroadcastController(db, service.NewService(db))
	grp.Post("/broadcast",
		features.RequireFeature(configs.FeatureBroadcastEmails),
		broadcast.Send)

	contacts := controller.NewContactSyncController(db)
	grp.Post("/contacts/sync",
		features.RequireFeature(configs.FeatureContactSync),
		contacts.Sync)
}
