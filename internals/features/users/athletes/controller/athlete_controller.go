// file: internals/features/users/athletes/controller/athlete_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "athletiq_backend/internals/features/users/athletes/dto"
	model "athletiq_backend/internals/features/users/athletes/model"
	helper "athletiq_backend/internals/helpers"
	authhelper "athletiq_backend/internals/helpers/auth"
)

type AthleteController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewAthleteController(db *gorm.DB) *AthleteController {
	return &AthleteController{DB: db, Validator: validator.New()}
}

// POST /api/u/athletes
func (ac *AthleteController) Create(c *fiber.Ctx) error {
	userID, err := authhelper.GetUserIDFromLocals(c)
	if err != nil {
		return err
	}

	var req dto.CreateAthleteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := ac.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	// admins may register an athlete for another user (cash walk-ins)
	owner := userID
	if authhelper.IsAdmin(c) {
		if forUser := c.Query("user_id"); forUser != "" {
			parsed, err := uuid.Parse(forUser)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid user_id")
			}
			owner = parsed
		}
	}

	m := req.ToModel(owner)
	if err := ac.DB.WithContext(c.Context()).Create(m).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "create athlete failed")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Athlete created", m)
}

// GET /api/u/athletes
func (ac *AthleteController) List(c *fiber.Ctx) error {
	userID, err := authhelper.GetUserIDFromLocals(c)
	if err != nil {
		return err
	}

	var athletes []model.AthleteModel
	if err := ac.DB.WithContext(c.Context()).
		Where("athlete_user_id = ?", userID).
		Order("athlete_created_at ASC").
		Find(&athletes).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "OK", athletes)
}

// PATCH /api/u/athletes/:id
func (ac *AthleteController) Update(c *fiber.Ctx) error {
	m, err := ac.findOwned(c)
	if err != nil {
		return err
	}

	var req dto.UpdateAthleteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := ac.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	req.Apply(m)
	if err := ac.DB.WithContext(c.Context()).Save(m).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "save failed")
	}
	return helper.Success(c, "Athlete updated", m)
}

// DELETE /api/u/athletes/:id, refused while the athlete sits on an unpaid
// cart item, so a checkout in progress cannot reference a deleted profile.
func (ac *AthleteController) Delete(c *fiber.Ctx) error {
	m, err := ac.findOwned(c)
	if err != nil {
		return err
	}

	var carted int64
	if err := ac.DB.WithContext(c.Context()).
		Table("cart_items").
		Where("cart_item_athlete_id = ? AND cart_item_deleted_at IS NULL", m.AthleteID).
		Count(&carted).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if carted > 0 {
		return fiber.NewError(fiber.StatusConflict, "athlete is in a cart; remove the cart item first")
	}

	if err := ac.DB.WithContext(c.Context()).Delete(m).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "delete failed")
	}
	return helper.Success(c, "Athlete deleted", nil)
}

func (ac *AthleteController) findOwned(c *fiber.Ctx) (*model.AthleteModel, error) {
	userID, err := authhelper.GetUserIDFromLocals(c)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var m model.AthleteModel
	q := ac.DB.WithContext(c.Context()).Where("athlete_id = ?", id)
	if !authhelper.IsAdmin(c) {
		q = q.Where("athlete_user_id = ?", userID)
	}
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "athlete not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return &m, nil
}
