// file: internals/features/finance/payments/controller/payment_admin_controller.go
package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	sessionModel "athletiq_backend/internals/features/catalog/sessions/model"
	"athletiq_backend/internals/features/finance/payments/dto"
	"athletiq_backend/internals/features/finance/payments/model"
	"athletiq_backend/internals/features/finance/payments/service"
	athleteModel "athletiq_backend/internals/features/users/athletes/model"
	helper "athletiq_backend/internals/helpers"
)

type PaymentAdminController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Refunds   *service.RefundService
	Store     *service.GormStore
}

func NewPaymentAdminController(db *gorm.DB, refunds *service.RefundService, store *service.GormStore) *PaymentAdminController {
	return &PaymentAdminController{
		DB:        db,
		Validator: validator.New(),
		Refunds:   refunds,
		Store:     store,
	}
}

/* =========================================================
   LIST: GET /api/a/payments
========================================================= */

func (ctl *PaymentAdminController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctl.DB.WithContext(c.Context()).Model(&model.PaymentModel{}).Preload("Lines")
	if userID := c.Query("user_id"); userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "Invalid user_id filter")
		}
		q = q.Where("payment_user_id = ?", id)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("payment_status = ?", status)
	}
	if sessionID := c.Query("session_id"); sessionID != "" {
		id, err := uuid.Parse(sessionID)
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "Invalid session_id filter")
		}
		q = q.Where(`payment_id IN (
			SELECT payment_athlete_payment_id FROM payment_athletes
			WHERE payment_athlete_session_id = ?)`, id)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to count payments")
	}

	var payments []model.PaymentModel
	if err := q.Order("payment_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&payments).Error; err != nil {
		log.Printf("[ERROR] list payments: %v", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to list payments")
	}

	return helper.Success(c, "Payments retrieved", fiber.Map{
		"payments":   dto.FromPaymentModels(payments),
		"pagination": helper.BuildPagination(paging, total, len(payments)),
	})
}

/* =========================================================
   REFUND: POST /api/a/payments/:id/refund
========================================================= */

func (ctl *PaymentAdminController) Refund(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid payment ID")
	}

	var req dto.RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	lineIDs, err := req.ParseLineIDs()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid line ID")
	}

	payment, err := ctl.Refunds.RefundLines(c.Context(), paymentID, lineIDs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			return helper.Error(c, fiber.StatusNotFound, "Payment not found")
		case errors.Is(err, service.ErrNothingToRefund):
			return helper.Error(c, fiber.StatusUnprocessableEntity, "None of the selected lines can be refunded")
		default:
			log.Printf("[ERROR] refund payment %s: %v", paymentID, err)
			return helper.Error(c, fiber.StatusBadGateway, "Refund failed")
		}
	}

	resp := dto.FromPaymentModel(payment)
	return helper.Success(c, "Refund processed", resp)
}

/* =========================================================
   CASH REGISTRATION: POST /api/a/payments/cash
========================================================= */

// RegisterCash records a walk-in who paid in person. Same atomic write path
// as a checkout, status cash, no provider involvement.
func (ctl *PaymentAdminController) RegisterCash(c *fiber.Ctx) error {
	var req dto.CashRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	userID, _ := uuid.Parse(req.UserID)
	sessionID, _ := uuid.Parse(req.SessionID)
	athleteID, _ := uuid.Parse(req.AthleteID)
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	var session sessionModel.TrainingSessionModel
	if err := ctl.DB.WithContext(c.Context()).
		Where("session_id = ?", sessionID).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Session not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load session")
	}

	var athlete athleteModel.AthleteModel
	if err := ctl.DB.WithContext(c.Context()).
		Where("athlete_id = ?", athleteID).
		First(&athlete).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Athlete not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load athlete")
	}

	paymentID, err := ctl.Store.RegisterCash(c.Context(), userID, sessionID, athleteID, qty, session.SessionPriceCents)
	if err != nil {
		log.Printf("[ERROR] cash registration for athlete %s on session %s: %v", athleteID, sessionID, err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to record cash registration")
	}

	payment, err := ctl.Store.LoadPaymentWithLines(c.Context(), paymentID)
	if err != nil || payment == nil {
		log.Printf("[WARN] reload cash payment %s: %v", paymentID, err)
		return helper.SuccessWithCode(c, fiber.StatusCreated, "Cash registration recorded", fiber.Map{"payment_id": paymentID})
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Cash registration recorded", dto.FromPaymentModel(payment))
}
