// file: internals/features/finance/payments/service/gorm_store.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"athletiq_backend/internals/features/finance/payments/model"
)

// GormStore backs the webhook and refund services. The multi-row money moves
// go through stored procedures so a registration or refund is one transaction
// on the database side.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{DB: db} }

/* =========================================================
   Webhook ledger
========================================================= */

func (s *GormStore) FindEvent(ctx context.Context, stripeEventID string) (*model.WebhookEventModel, error) {
	var ev model.WebhookEventModel
	err := s.DB.WithContext(ctx).
		Where("webhook_event_stripe_id = ?", stripeEventID).
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *GormStore) RecordEvent(ctx context.Context, stripeEventID, eventType string, payload []byte) (*model.WebhookEventModel, error) {
	ev := model.WebhookEventModel{
		WebhookEventStripeID: stripeEventID,
		WebhookEventType:     eventType,
		WebhookEventPayload:  payload,
	}
	if err := s.DB.WithContext(ctx).Create(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *GormStore) MarkProcessed(ctx context.Context, eventID uuid.UUID) error {
	now := time.Now()
	return s.DB.WithContext(ctx).
		Model(&model.WebhookEventModel{}).
		Where("webhook_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"webhook_event_processed_at": now,
			"webhook_event_error":        nil,
		}).Error
}

func (s *GormStore) MarkFailed(ctx context.Context, eventID uuid.UUID, reason string) error {
	return s.DB.WithContext(ctx).
		Model(&model.WebhookEventModel{}).
		Where("webhook_event_id = ?", eventID).
		Update("webhook_event_error", reason).Error
}

/* =========================================================
   Resolution lookups
========================================================= */

func (s *GormStore) FindUserIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.DB.WithContext(ctx).Raw(
		`SELECT id FROM users WHERE LOWER(email) = LOWER(?) AND deleted_at IS NULL LIMIT 1`,
		email,
	).Scan(&id).Error
	if err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return id, nil
}

func (s *GormStore) SessionByStripePrice(ctx context.Context, priceID string) (uuid.UUID, int64, error) {
	var row struct {
		SessionID         uuid.UUID
		SessionPriceCents int64
	}
	err := s.DB.WithContext(ctx).Raw(
		`SELECT session_id, session_price_cents FROM training_sessions
		 WHERE session_stripe_price_id = ? AND session_deleted_at IS NULL LIMIT 1`,
		priceID,
	).Scan(&row).Error
	if err != nil {
		return uuid.Nil, 0, err
	}
	if row.SessionID == uuid.Nil {
		return uuid.Nil, 0, gorm.ErrRecordNotFound
	}
	return row.SessionID, row.SessionPriceCents, nil
}

func (s *GormStore) SessionPrice(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var row struct {
		SessionPriceCents int64
		Found             bool
	}
	err := s.DB.WithContext(ctx).Raw(
		`SELECT session_price_cents, TRUE AS found FROM training_sessions
		 WHERE session_id = ? AND session_deleted_at IS NULL LIMIT 1`,
		sessionID,
	).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if !row.Found {
		return 0, gorm.ErrRecordNotFound
	}
	return row.SessionPriceCents, nil
}

/* =========================================================
   Stored procedures
========================================================= */

// ProcessPayment inserts the payment header and lines and clears the matching
// cart rows in one database transaction.
func (s *GormStore) ProcessPayment(ctx context.Context, args ProcessPaymentArgs) (uuid.UUID, error) {
	sessionIDs := uuidStrings(args.SessionIDs)
	athleteIDs := uuidStrings(args.AthleteIDs)

	var paymentID uuid.UUID
	err := s.DB.WithContext(ctx).Raw(
		`SELECT process_payment_webhook(
			?::uuid, ?::text, ?::text, ?::bigint, ?::text,
			?::uuid[], ?::uuid[], ?::int[], ?::bigint[]
		)`,
		args.UserID, args.CheckoutID, args.PaymentIntentID, args.AmountCents, args.Currency,
		pq.Array(sessionIDs), pq.Array(athleteIDs), pq.Array(args.Quantities), pq.Array(args.UnitCents),
	).Scan(&paymentID).Error
	if err != nil {
		return uuid.Nil, err
	}
	return paymentID, nil
}

func (s *GormStore) ClaimEmail(ctx context.Context, paymentID uuid.UUID) (bool, error) {
	res := s.DB.WithContext(ctx).Exec(
		`UPDATE payments
		 SET payment_email_sent_at = NOW()
		 WHERE payment_id = ? AND payment_email_sent_at IS NULL`,
		paymentID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ProcessRefund marks the lines and lets the procedure derive the payment
// status from what is actually refunded after the update.
func (s *GormStore) ProcessRefund(ctx context.Context, args ProcessRefundArgs) error {
	lineIDs := uuidStrings(args.LineIDs)
	var refundID interface{}
	if args.StripeRefundID != "" {
		refundID = args.StripeRefundID
	}
	return s.DB.WithContext(ctx).Exec(
		`SELECT process_refund(?::uuid, ?::uuid[], ?::text)`,
		args.PaymentID, pq.Array(lineIDs), refundID,
	).Error
}

// RegisterCash records an in-person registration through the same atomic
// path checkouts use, with status cash and no provider references.
func (s *GormStore) RegisterCash(ctx context.Context, userID, sessionID, athleteID uuid.UUID, quantity int, unitCents int64) (uuid.UUID, error) {
	var paymentID uuid.UUID
	err := s.DB.WithContext(ctx).Raw(
		`SELECT add_athlete_to_session_cash(?::uuid, ?::uuid, ?::uuid, ?::int, ?::bigint)`,
		userID, sessionID, athleteID, quantity, unitCents,
	).Scan(&paymentID).Error
	if err != nil {
		return uuid.Nil, err
	}
	return paymentID, nil
}

/* =========================================================
   Refund store
========================================================= */

func (s *GormStore) LoadPaymentWithLines(ctx context.Context, paymentID uuid.UUID) (*model.PaymentModel, error) {
	var p model.PaymentModel
	err := s.DB.WithContext(ctx).
		Preload("Lines").
		Where("payment_id = ?", paymentID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
