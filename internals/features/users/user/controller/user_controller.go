// file: internals/features/users/user/controller/user_controller.go
package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userdto "athletiq_backend/internals/features/users/user/dto"
	usermodel "athletiq_backend/internals/features/users/user/model"
	helper "athletiq_backend/internals/helpers"
	authhelper "athletiq_backend/internals/helpers/auth"
)

type UserController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db, Validator: validator.New()}
}

// GET /api/u/me
func (uc *UserController) Me(c *fiber.Ctx) error {
	userID, err := authhelper.GetUserIDFromLocals(c)
	if err != nil {
		return err
	}

	var u usermodel.UserModel
	if err := uc.DB.WithContext(c.Context()).First(&u, "id = ?", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}
	return helper.Success(c, "OK", userdto.FromModel(&u))
}

// PATCH /api/u/me
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := authhelper.GetUserIDFromLocals(c)
	if err != nil {
		return err
	}

	var req userdto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := uc.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	updates := map[string]interface{}{}
	if req.UserName != nil {
		updates["user_name"] = *req.UserName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "nothing to update")
	}

	if err := uc.DB.WithContext(c.Context()).
		Model(&usermodel.UserModel{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "update failed")
	}

	var u usermodel.UserModel
	if err := uc.DB.WithContext(c.Context()).First(&u, "id = ?", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "Profile updated", userdto.FromModel(&u))
}

// POST /api/u/me/waiver records the liability waiver signature. Idempotent:
// re-signing keeps the original timestamp.
func (uc *UserController) SignWaiver(c *fiber.Ctx) error {
	userID, err := authhelper.GetUserIDFromLocals(c)
	if err != nil {
		return err
	}

	var req userdto.SignWaiverRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := uc.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	res := uc.DB.WithContext(c.Context()).
		Model(&usermodel.UserModel{}).
		Where("id = ? AND waiver_signed_at IS NULL", userID).
		Update("waiver_signed_at", time.Now())
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "sign waiver failed")
	}

	var u usermodel.UserModel
	if err := uc.DB.WithContext(c.Context()).First(&u, "id = ?", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "Waiver signed", userdto.FromModel(&u))
}
