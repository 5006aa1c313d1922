// file: internals/features/commerce/carts/controller/cart_controller.go
package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	sessionModel "athletiq_backend/internals/features/catalog/sessions/model"
	"athletiq_backend/internals/features/commerce/carts/dto"
	cartModel "athletiq_backend/internals/features/commerce/carts/model"
	"athletiq_backend/internals/features/commerce/carts/service"
	athleteModel "athletiq_backend/internals/features/users/athletes/model"
	helper "athletiq_backend/internals/helpers"
	authhelper "athletiq_backend/internals/helpers/auth"
)

type CartController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewCartController(db *gorm.DB) *CartController {
	return &CartController{DB: db, Validator: validator.New()}
}

/* =========================================================
   LIST: GET /api/u/cart
========================================================= */

func (ctl *CartController) List(c *fiber.Ctx) error {
	userID, err := authhelper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var rows []dto.CartItemRow
	err = ctl.DB.WithContext(c.Context()).
		Table("cart_items ci").
		Select(`ci.cart_item_id, ci.cart_item_session_id, ci.cart_item_athlete_id,
			ci.cart_item_quantity, ci.cart_item_created_at AS created_at,
			s.session_name, s.session_price_cents, s.session_currency,
			a.athlete_first_name, a.athlete_last_name`).
		Joins("JOIN training_sessions s ON s.session_id = ci.cart_item_session_id").
		Joins("JOIN athletes a ON a.athlete_id = ci.cart_item_athlete_id").
		Where("ci.cart_item_user_id = ? AND ci.cart_item_deleted_at IS NULL", userID).
		Order("ci.cart_item_created_at ASC").
		Scan(&rows).Error
	if err != nil {
		log.Printf("[ERROR] list cart for user %s: %v", userID, err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load cart")
	}

	return helper.Success(c, "Cart retrieved", dto.FromRows(rows))
}

/* =========================================================
   ADD: POST /api/u/cart
========================================================= */

func (ctl *CartController) Add(c *fiber.Ctx) error {
	userID, err := authhelper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.AddCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	item, err := req.ToModel(userID)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid session or athlete ID")
	}

	// The session must exist and still be open for registration.
	var session sessionModel.TrainingSessionModel
	if err := ctl.DB.WithContext(c.Context()).
		Where("session_id = ? AND session_is_active = true", item.CartItemSessionID).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Session not found or no longer active")
		}
		log.Printf("[ERROR] load session %s: %v", item.CartItemSessionID, err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load session")
	}

	// The athlete must belong to the caller.
	var athlete athleteModel.AthleteModel
	if err := ctl.DB.WithContext(c.Context()).
		Where("athlete_id = ? AND athlete_user_id = ?", item.CartItemAthleteID, userID).
		First(&athlete).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Athlete not found")
		}
		log.Printf("[ERROR] load athlete %s: %v", item.CartItemAthleteID, err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load athlete")
	}

	if !session.EligibleFor(athlete.AthleteGender, athlete.AthleteGrade) {
		return helper.Error(c, fiber.StatusUnprocessableEntity, "Athlete does not meet the session requirements")
	}

	purchased, carted, err := ctl.countClaimed(c, session.SessionID)
	if err != nil {
		log.Printf("[ERROR] count claimed seats for session %s: %v", session.SessionID, err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to check session capacity")
	}
	if !service.FitsCapacity(session.SessionStock, purchased, carted, item.CartItemQuantity) {
		return helper.Error(c, fiber.StatusConflict, "Session is full")
	}

	if err := ctl.DB.WithContext(c.Context()).Create(item).Error; err != nil {
		if isUniqueViolation(err) {
			return helper.Error(c, fiber.StatusConflict, "This athlete is already in a cart for this session")
		}
		log.Printf("[ERROR] add cart item for user %s: %v", userID, err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to add item to cart")
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Item added to cart", item)
}

/* =========================================================
   UPDATE QUANTITY: PATCH /api/u/cart/:id
========================================================= */

func (ctl *CartController) UpdateQuantity(c *fiber.Ctx) error {
	userID, err := authhelper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid cart item ID")
	}

	var req dto.UpdateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	var item cartModel.CartItemModel
	if err := ctl.DB.WithContext(c.Context()).
		Where("cart_item_id = ? AND cart_item_user_id = ?", itemID, userID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Cart item not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load cart item")
	}

	if req.Quantity > item.CartItemQuantity {
		var session sessionModel.TrainingSessionModel
		if err := ctl.DB.WithContext(c.Context()).
			Where("session_id = ?", item.CartItemSessionID).
			First(&session).Error; err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Failed to load session")
		}
		purchased, carted, err := ctl.countClaimed(c, session.SessionID)
		if err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Failed to check session capacity")
		}
		// This row's current quantity is already part of the carted total.
		extra := req.Quantity - item.CartItemQuantity
		if !service.FitsCapacity(session.SessionStock, purchased, carted, extra) {
			return helper.Error(c, fiber.StatusConflict, "Session is full")
		}
	}

	item.CartItemQuantity = req.Quantity
	if err := ctl.DB.WithContext(c.Context()).Save(&item).Error; err != nil {
		log.Printf("[ERROR] update cart item %s: %v", itemID, err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to update cart item")
	}

	return helper.Success(c, "Cart item updated", item)
}

/* =========================================================
   REMOVE: DELETE /api/u/cart/:id
========================================================= */

func (ctl *CartController) Remove(c *fiber.Ctx) error {
	userID, err := authhelper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid cart item ID")
	}

	res := ctl.DB.WithContext(c.Context()).
		Where("cart_item_id = ? AND cart_item_user_id = ?", itemID, userID).
		Delete(&cartModel.CartItemModel{})
	if res.Error != nil {
		log.Printf("[ERROR] remove cart item %s: %v", itemID, res.Error)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to remove cart item")
	}
	if res.RowsAffected == 0 {
		return helper.Error(c, fiber.StatusNotFound, "Cart item not found")
	}

	return helper.Success(c, "Cart item removed", nil)
}

/* =========================================================
   INTERNAL
========================================================= */

// countClaimed totals the seats already spoken for on a session: paid
// non-refunded registrations plus quantities in anyone's open cart.
func (ctl *CartController) countClaimed(c *fiber.Ctx, sessionID uuid.UUID) (purchased, carted int64, err error) {
	err = ctl.DB.WithContext(c.Context()).
		Table("payment_athletes pa").
		Joins("JOIN payments p ON p.payment_id = pa.payment_athlete_payment_id").
		Where(`pa.payment_athlete_session_id = ?
			AND pa.payment_athlete_refunded_at IS NULL
			AND p.payment_status IN ('succeeded', 'cash', 'partial_refund')`, sessionID).
		Select("COALESCE(SUM(pa.payment_athlete_quantity), 0)").
		Scan(&purchased).Error
	if err != nil {
		return 0, 0, err
	}

	err = ctl.DB.WithContext(c.Context()).
		Table("cart_items").
		Where("cart_item_session_id = ? AND cart_item_deleted_at IS NULL", sessionID).
		Select("COALESCE(SUM(cart_item_quantity), 0)").
		Scan(&carted).Error
	if err != nil {
		return 0, 0, err
	}
	return purchased, carted, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value")
}
