// file: internals/features/finance/payments/route/payment_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"athletiq_backend/internals/features/finance/payments/controller"
	"athletiq_backend/internals/features/finance/payments/service"
	mailerService "athletiq_backend/internals/features/notifications/mailer/service"
	stripegw "athletiq_backend/internals/platform/stripe"
)

// WebhookRoutes mounts the provider callback. It must stay outside the auth
// middleware; the signature check is the whole gate.
func WebhookRoutes(api fiber.Router, db *gorm.DB) {
	store := service.NewGormStore(db)
	processor := service.NewWebhookProcessor(store, stripegw.NewClient(), mailerService.NewService(db))
	ctl := controller.NewWebhookController(processor)

	api.Post("/payments/stripe/webhook", ctl.Handle)
}

// PaymentUserRoutes mounts the caller-facing payment history.
func PaymentUserRoutes(grp fiber.Router, db *gorm.DB) {
	ctl := controller.NewPaymentUserController(db)
	grp.Get("/payments", ctl.History)
}

// PaymentAdminRoutes mounts refunds, cash registration, and the payment list.
func PaymentAdminRoutes(grp fiber.Router, db *gorm.DB) {
	store := service.NewGormStore(db)
	refunds := service.NewRefundService(store, stripegw.NewClient())
	ctl := controller.NewPaymentAdminController(db, refunds, store)

	payments := grp.Group("/payments")
	payments.Get("/", ctl.List)
	payments.Post("/cash", ctl.RegisterCash)
	payments.Post("/:id/refund", ctl.Refund)
}
