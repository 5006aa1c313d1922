// file: internals/features/finance/payments/model/payment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/* =========================================================
   Payment statuses
========================================================= */

const (
	PaymentStatusSucceeded     = "succeeded"
	PaymentStatusCash          = "cash"
	PaymentStatusFailed        = "failed"
	PaymentStatusRefunded      = "refunded"
	PaymentStatusPartialRefund = "partial_refund"
)

/* =========================================================
   Payment (order header)
========================================================= */

type PaymentModel struct {
	PaymentID uuid.UUID `gorm:"column:payment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"payment_id"`

	PaymentUserID uuid.UUID `gorm:"column:payment_user_id;type:uuid;not null;index" json:"payment_user_id"`

	PaymentStatus      string `gorm:"column:payment_status;type:varchar(20);not null" json:"payment_status"`
	PaymentAmountCents int64  `gorm:"column:payment_amount_cents;not null" json:"payment_amount_cents"`
	PaymentCurrency    string `gorm:"column:payment_currency;type:varchar(8);not null;default:usd" json:"payment_currency"`

	// Provider references. Empty for cash registrations.
	PaymentStripeCheckoutID      string `gorm:"column:payment_stripe_checkout_id;size:128;index" json:"-"`
	PaymentStripePaymentIntentID string `gorm:"column:payment_stripe_payment_intent_id;size:128;index" json:"-"`

	// Set once the confirmation email has been claimed. The claim happens
	// before the send, so a crash mid-send loses the email rather than
	// duplicating it.
	PaymentEmailSentAt *time.Time `gorm:"column:payment_email_sent_at" json:"-"`

	CreatedAt time.Time `gorm:"column:payment_created_at;autoCreateTime" json:"payment_created_at"`
	UpdatedAt time.Time `gorm:"column:payment_updated_at;autoUpdateTime" json:"payment_updated_at"`

	Lines []PaymentAthleteModel `gorm:"foreignKey:PaymentAthletePaymentID;references:PaymentID" json:"lines,omitempty"`
}

func (PaymentModel) TableName() string { return "payments" }

/* =========================================================
   Payment line (one athlete on one session)
========================================================= */

type PaymentAthleteModel struct {
	PaymentAthleteID uuid.UUID `gorm:"column:payment_athlete_id;type:uuid;default:gen_random_uuid();primaryKey" json:"payment_athlete_id"`

	PaymentAthletePaymentID uuid.UUID `gorm:"column:payment_athlete_payment_id;type:uuid;not null;index" json:"payment_athlete_payment_id"`
	PaymentAthleteSessionID uuid.UUID `gorm:"column:payment_athlete_session_id;type:uuid;not null;index" json:"payment_athlete_session_id"`
	PaymentAthleteAthleteID uuid.UUID `gorm:"column:payment_athlete_athlete_id;type:uuid;not null;index" json:"payment_athlete_athlete_id"`

	PaymentAthleteQuantity  int   `gorm:"column:payment_athlete_quantity;not null;default:1" json:"payment_athlete_quantity"`
	PaymentAthleteUnitCents int64 `gorm:"column:payment_athlete_unit_cents;not null" json:"payment_athlete_unit_cents"`

	PaymentAthleteRefundedAt     *time.Time `gorm:"column:payment_athlete_refunded_at" json:"payment_athlete_refunded_at,omitempty"`
	PaymentAthleteStripeRefundID *string    `gorm:"column:payment_athlete_stripe_refund_id;size:128" json:"-"`

	CreatedAt time.Time `gorm:"column:payment_athlete_created_at;autoCreateTime" json:"payment_athlete_created_at"`
}

func (PaymentAthleteModel) TableName() string { return "payment_athletes" }

func (l *PaymentAthleteModel) Refunded() bool { return l.PaymentAthleteRefundedAt != nil }

func (l *PaymentAthleteModel) LineCents() int64 {
	return l.PaymentAthleteUnitCents * int64(l.PaymentAthleteQuantity)
}

/* =========================================================
   Webhook event ledger
========================================================= */

// WebhookEventModel records every provider event we have seen. The unique
// provider event ID plus processed_at gives replay-safe, idempotent handling.
type WebhookEventModel struct {
	WebhookEventID uuid.UUID `gorm:"column:webhook_event_id;type:uuid;default:gen_random_uuid();primaryKey" json:"webhook_event_id"`

	WebhookEventStripeID string         `gorm:"column:webhook_event_stripe_id;size:128;not null;uniqueIndex" json:"webhook_event_stripe_id"`
	WebhookEventType     string         `gorm:"column:webhook_event_type;size:64;not null" json:"webhook_event_type"`
	WebhookEventPayload  datatypes.JSON `gorm:"column:webhook_event_payload;type:jsonb" json:"-"`

	WebhookEventProcessedAt *time.Time `gorm:"column:webhook_event_processed_at" json:"webhook_event_processed_at,omitempty"`
	WebhookEventError       *string    `gorm:"column:webhook_event_error;type:text" json:"-"`

	CreatedAt time.Time `gorm:"column:webhook_event_created_at;autoCreateTime" json:"webhook_event_created_at"`
}

func (WebhookEventModel) TableName() string { return "webhook_events" }
