package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */
/* Mirrors the Postgres ENUMs: session_gender, session_skill_level */

const (
	SessionGenderMale   = "male"
	SessionGenderFemale = "female"
	SessionGenderOpen   = "open"
)

const (
	SessionSkillBeginner     = "beginner"
	SessionSkillIntermediate = "intermediate"
	SessionSkillAdvanced     = "advanced"
	SessionSkillAll          = "all"
)

/* ===================== Model ===================== */

// TrainingSessionModel is a purchasable offering, mirrored by a Stripe
// product+price pair. Local is_active and remote active must agree; the sync
// service owns that invariant.
type TrainingSessionModel struct {
	SessionID uuid.UUID `gorm:"column:session_id;type:uuid;default:gen_random_uuid();primaryKey" json:"session_id"`

	SessionName        string  `gorm:"column:session_name;size:150;not null" json:"session_name"`
	SessionDescription string  `gorm:"column:session_description;type:text" json:"session_description"`
	SessionBannerURL   *string `gorm:"column:session_banner_url" json:"session_banner_url,omitempty"`

	// price in minor units; currency lower-case ISO code
	SessionPriceCents int64  `gorm:"column:session_price_cents;not null;check:session_price_cents >= 0" json:"session_price_cents"`
	SessionCurrency   string `gorm:"column:session_currency;type:varchar(8);not null;default:usd" json:"session_currency"`

	// stock is a ceiling checked at cart-add time, not a mutated counter
	SessionStock    int  `gorm:"column:session_stock;not null;default:0" json:"session_stock"`
	SessionIsActive bool `gorm:"column:session_is_active;not null;default:true" json:"session_is_active"`

	// demographic targeting
	SessionGender     string `gorm:"column:session_gender;type:varchar(10);not null;default:'open'" json:"session_gender"`
	SessionGradeMin   int    `gorm:"column:session_grade_min;not null;default:1" json:"session_grade_min"`
	SessionGradeMax   int    `gorm:"column:session_grade_max;not null;default:12" json:"session_grade_max"`
	SessionSkillLevel string `gorm:"column:session_skill_level;type:varchar(20);not null;default:'all'" json:"session_skill_level"`

	// Stripe mirror (opaque external ids)
	SessionStripeProductID string `gorm:"column:session_stripe_product_id;size:64;index" json:"-"`
	SessionStripePriceID   string `gorm:"column:session_stripe_price_id;size:64;index" json:"-"`

	SessionOccurrences []SessionOccurrenceModel `gorm:"foreignKey:OccurrenceSessionID;references:SessionID" json:"session_occurrences,omitempty"`

	CreatedAt time.Time      `gorm:"column:session_created_at;autoCreateTime" json:"session_created_at"`
	UpdatedAt time.Time      `gorm:"column:session_updated_at;autoUpdateTime" json:"session_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:session_deleted_at;index" json:"-"`
}

func (TrainingSessionModel) TableName() string { return "training_sessions" }

// SessionOccurrenceModel is one scheduled date/time/location of a session.
type SessionOccurrenceModel struct {
	OccurrenceID        uuid.UUID `gorm:"column:occurrence_id;type:uuid;default:gen_random_uuid();primaryKey" json:"occurrence_id"`
	OccurrenceSessionID uuid.UUID `gorm:"column:occurrence_session_id;type:uuid;not null;index" json:"occurrence_session_id"`

	OccurrenceStartsAt time.Time `gorm:"column:occurrence_starts_at;not null" json:"occurrence_starts_at"`
	OccurrenceEndsAt   time.Time `gorm:"column:occurrence_ends_at;not null" json:"occurrence_ends_at"`
	OccurrenceLocation string    `gorm:"column:occurrence_location;size:200;not null" json:"occurrence_location"`

	CreatedAt time.Time `gorm:"column:occurrence_created_at;autoCreateTime" json:"occurrence_created_at"`
}

func (SessionOccurrenceModel) TableName() string { return "session_occurrences" }

// EligibleFor reports whether an athlete profile fits the session's
// demographic targeting. Grade 0 means "not set" and is not checked.
func (s *TrainingSessionModel) EligibleFor(gender string, grade *int) bool {
	if s.SessionGender != SessionGenderOpen && gender != s.SessionGender {
		return false
	}
	if grade != nil && (*grade < s.SessionGradeMin || *grade > s.SessionGradeMax) {
		return false
	}
	return true
}
