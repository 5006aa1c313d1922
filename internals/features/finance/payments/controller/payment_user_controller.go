// file: internals/features/finance/payments/controller/payment_user_controller.go
package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"athletiq_backend/internals/features/finance/payments/dto"
	"athletiq_backend/internals/features/finance/payments/model"
	helper "athletiq_backend/internals/helpers"
	authhelper "athletiq_backend/internals/helpers/auth"
)

type PaymentUserController struct {
	DB *gorm.DB
}

func NewPaymentUserController(db *gorm.DB) *PaymentUserController {
	return &PaymentUserController{DB: db}
}

// History lists the caller's payments, newest first. GET /api/u/payments
func (ctl *PaymentUserController) History(c *fiber.Ctx) error {
	userID, err := authhelper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	paging := helper.ResolvePaging(c, 20, 100)

	q := ctl.DB.WithContext(c.Context()).
		Model(&model.PaymentModel{}).
		Where("payment_user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to count payments")
	}

	var payments []model.PaymentModel
	if err := q.Preload("Lines").
		Order("payment_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&payments).Error; err != nil {
		log.Printf("[ERROR] list payments for user %s: %v", userID, err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to list payments")
	}

	return helper.Success(c, "Payments retrieved", fiber.Map{
		"payments":   dto.FromPaymentModels(payments),
		"pagination": helper.BuildPagination(paging, total, len(payments)),
	})
}
