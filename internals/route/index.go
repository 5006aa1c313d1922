// file: internals/route/index.go
package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	sessionRoute "athletiq_backend/internals/features/catalog/sessions/route"
	cartRoute "athletiq_backend/internals/features/commerce/carts/route"
	checkoutRoute "athletiq_backend/internals/features/commerce/checkout/route"
	paymentRoute "athletiq_backend/internals/features/finance/payments/route"
	mailerRoute "athletiq_backend/internals/features/notifications/mailer/route"
	athleteRoute "athletiq_backend/internals/features/users/athletes/route"
	authRoute "athletiq_backend/internals/features/users/auth/route"
	userRoute "athletiq_backend/internals/features/users/user/route"
	authMiddleware "athletiq_backend/internals/middlewares/auth"
	featureMiddleware "athletiq_backend/internals/middlewares/features"
)

// SetupRoutes wires every feature under three surfaces: /api/public for
// anonymous browsing, /api/u for signed-in users, /api/a for admins. The
// provider webhook hangs off /api directly; its auth is the signature check.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	authRoute.AuthRoutes(app, db)

	api := app.Group("/api")
	paymentRoute.WebhookRoutes(api, db)

	public := api.Group("/public")
	sessionRoute.SessionPublicRoutes(public, db)

	user := api.Group("/u", authMiddleware.AuthMiddleware(db))
	userRoute.UserRoutes(user, db)
	athleteRoute.AthleteRoutes(user, db)
	cartRoute.CartRoutes(user, db)
	checkoutRoute.CheckoutRoutes(user, db)
	paymentRoute.PaymentUserRoutes(user, db)

	admin := api.Group("/a", authMiddleware.AuthMiddleware(db), featureMiddleware.IsAdmin())
	sessionRoute.SessionAdminRoutes(admin, db)
	paymentRoute.PaymentAdminRoutes(admin, db)
	mailerRoute.MailerAdminRoutes(admin, db)
}
