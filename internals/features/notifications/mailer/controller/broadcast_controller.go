// file: internals/features/notifications/mailer/controller/broadcast_controller.go
package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"athletiq_backend/internals/features/notifications/mailer/service"
	helper "athletiq_backend/internals/helpers"
)

type BroadcastController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Mailer    *service.Service
}

func NewBroadcastController(db *gorm.DB, mailer *service.Service) *BroadcastController {
	return &BroadcastController{DB: db, Validator: validator.New(), Mailer: mailer}
}

type broadcastRequest struct {
	Subject   string `json:"subject" validate:"required,min=3,max=150"`
	Body      string `json:"body" validate:"required,min=10"`
	SessionID string `json:"session_id" validate:"omitempty,uuid"`
}

// Send emails either a session's roster or every active account.
// POST /api/a/broadcast
func (ctl *BroadcastController) Send(c *fiber.Ctx) error {
	var req broadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	recipients, err := ctl.resolveRecipients(c, req.SessionID)
	if err != nil {
		log.Printf("[ERROR] resolve broadcast recipients: %v", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to resolve recipients")
	}
	if len(recipients) == 0 {
		return helper.Error(c, fiber.StatusUnprocessableEntity, "No recipients to send to")
	}

	sent, failed := 0, 0
	for _, to := range recipients {
		if err := ctl.Mailer.SendRaw(to, req.Subject, req.Body); err != nil {
			log.Printf("[WARN] broadcast to %s: %v", to, err)
			failed++
			continue
		}
		sent++
	}

	return helper.Success(c, "Broadcast finished", fiber.Map{
		"sent":   sent,
		"failed": failed,
	})
}

// resolveRecipients returns roster parent emails for a session, or every
// active account when no session is given. Duplicates are collapsed.
func (ctl *BroadcastController) resolveRecipients(c *fiber.Ctx, sessionID string) ([]string, error) {
	var emails []string
	if sessionID != "" {
		id, err := uuid.Parse(sessionID)
		if err != nil {
			return nil, err
		}
		err = ctl.DB.WithContext(c.Context()).Raw(`
			SELECT DISTINCT u.email
			FROM payment_athletes pa
			JOIN payments p ON p.payment_id = pa.payment_athlete_payment_id
			JOIN users u    ON u.id = p.payment_user_id
			WHERE pa.payment_athlete_session_id = ?
			  AND pa.payment_athlete_refunded_at IS NULL
			  AND p.payment_status IN ('succeeded','cash','partial_refund')
		`, id).Scan(&emails).Error
		return emails, err
	}

	err := ctl.DB.WithContext(c.Context()).
		Table("users").
		Where("is_active = true AND deleted_at IS NULL").
		Distinct("email").
		Pluck("email", &emails).Error
	return emails, err
}
