// file: internals/features/notifications/mailer/controller/contact_sync_controller.go
package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userModel "athletiq_backend/internals/features/users/user/model"
	helper "athletiq_backend/internals/helpers"
	stripegw "athletiq_backend/internals/platform/stripe"
)

type ContactSyncController struct {
	DB      *gorm.DB
	Gateway *stripegw.Client
}

func NewContactSyncController(db *gorm.DB) *ContactSyncController {
	return &ContactSyncController{DB: db, Gateway: stripegw.NewClient()}
}

// Sync backfills provider customer records for accounts that never checked
// out. Per-user failures are logged and skipped so one bad record cannot
// stall the rest. POST /api/a/contacts/sync
func (ctl *ContactSyncController) Sync(c *fiber.Ctx) error {
	var users []userModel.UserModel
	err := ctl.DB.WithContext(c.Context()).
		Where("stripe_customer_id IS NULL AND is_active = true").
		Limit(500).
		Find(&users).Error
	if err != nil {
		log.Printf("[ERROR] load users for contact sync: %v", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load users")
	}

	synced, failed := 0, 0
	for i := range users {
		u := &users[i]
		customerID, err := ctl.Gateway.EnsureCustomer(c.Context(), u.Email, u.UserName, u.ID.String())
		if err != nil {
			log.Printf("[WARN] contact sync for user %s: %v", u.ID, err)
			failed++
			continue
		}
		err = ctl.DB.WithContext(c.Context()).
			Model(&userModel.UserModel{}).
			Where("id = ?", u.ID).
			Update("stripe_customer_id", customerID).Error
		if err != nil {
			log.Printf("[WARN] persist customer %s for user %s: %v", customerID, u.ID, err)
			failed++
			continue
		}
		synced++
	}

	return helper.Success(c, "Contact sync finished", fiber.Map{
		"synced":    synced,
		"failed":    failed,
		"remaining": len(users) == 500,
	})
}
