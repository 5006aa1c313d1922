package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserModel represents the users table
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserName     string    `gorm:"size:100;not null" json:"user_name"`
	Email        string    `gorm:"size:255;unique;not null" json:"email"`
	Password     string    `gorm:"size:255" json:"-"`
	GoogleID     *string   `gorm:"size:255;unique" json:"google_id,omitempty"`
	Role         string    `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Phone        *string   `gorm:"size:32" json:"phone,omitempty"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`

	// Liability waiver. Checkout is refused until this is set, no matter what
	// the client claims.
	WaiverSignedAt *time.Time `gorm:"column:waiver_signed_at" json:"waiver_signed_at,omitempty"`

	// Stripe customer mirror, created lazily at first checkout.
	StripeCustomerID *string `gorm:"column:stripe_customer_id;size:64" json:"-"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) HasSignedWaiver() bool {
	return u.WaiverSignedAt != nil
}
