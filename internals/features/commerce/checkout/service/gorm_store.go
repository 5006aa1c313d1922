// file: internals/features/commerce/checkout/service/gorm_store.go
package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	userModel "athletiq_backend/internals/features/users/user/model"
)

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{DB: db} }

func (s *GormStore) LoadUser(ctx context.Context, userID uuid.UUID) (*CheckoutUser, error) {
	var u userModel.UserModel
	if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
		return nil, err
	}
	return &CheckoutUser{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.UserName,
		WaiverSigned:     u.HasSignedWaiver(),
		StripeCustomerID: u.StripeCustomerID,
	}, nil
}

func (s *GormStore) LoadCartLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	var rows []struct {
		CartItemSessionID    uuid.UUID
		SessionName          string
		SessionStripePriceID string
		SessionIsActive      bool
		CartItemAthleteID    uuid.UUID
		CartItemQuantity     int
	}
	err := s.DB.WithContext(ctx).
		Table("cart_items ci").
		Select(`ci.cart_item_session_id, s.session_name, s.session_stripe_price_id,
			s.session_is_active, ci.cart_item_athlete_id, ci.cart_item_quantity`).
		Joins("JOIN training_sessions s ON s.session_id = ci.cart_item_session_id").
		Where("ci.cart_item_user_id = ? AND ci.cart_item_deleted_at IS NULL", userID).
		Order("ci.cart_item_created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	lines := make([]CartLine, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, CartLine{
			SessionID:     r.CartItemSessionID,
			SessionName:   r.SessionName,
			StripePriceID: r.SessionStripePriceID,
			LocalActive:   r.SessionIsActive,
			AthleteID:     r.CartItemAthleteID,
			Quantity:      r.CartItemQuantity,
		})
	}
	return lines, nil
}

func (s *GormStore) SaveStripeCustomerID(ctx context.Context, userID uuid.UUID, customerID string) error {
	return s.DB.WithContext(ctx).
		Model(&userModel.UserModel{}).
		Where("id = ?", userID).
		Update("stripe_customer_id", customerID).Error
}
