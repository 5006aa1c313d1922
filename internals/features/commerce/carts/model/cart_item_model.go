package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItemModel is an intent to purchase: (user, session, athlete, quantity).
// At most one row per (session, athlete); existence does not mean paid.
type CartItemModel struct {
	CartItemID uuid.UUID `gorm:"column:cart_item_id;type:uuid;default:gen_random_uuid();primaryKey" json:"cart_item_id"`

	CartItemUserID    uuid.UUID `gorm:"column:cart_item_user_id;type:uuid;not null;index" json:"cart_item_user_id"`
	CartItemSessionID uuid.UUID `gorm:"column:cart_item_session_id;type:uuid;not null;uniqueIndex:uq_cart_session_athlete,priority:1" json:"cart_item_session_id"`
	CartItemAthleteID uuid.UUID `gorm:"column:cart_item_athlete_id;type:uuid;not null;uniqueIndex:uq_cart_session_athlete,priority:2" json:"cart_item_athlete_id"`

	CartItemQuantity int `gorm:"column:cart_item_quantity;not null;default:1;check:cart_item_quantity > 0" json:"cart_item_quantity"`

	CreatedAt time.Time      `gorm:"column:cart_item_created_at;autoCreateTime" json:"cart_item_created_at"`
	UpdatedAt time.Time      `gorm:"column:cart_item_updated_at;autoUpdateTime" json:"cart_item_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:cart_item_deleted_at;index" json:"-"`
}

func (CartItemModel) TableName() string { return "cart_items" }
