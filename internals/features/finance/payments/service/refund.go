// file: internals/features/finance/payments/service/refund.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"athletiq_backend/internals/features/finance/payments/model"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrNothingToRefund = errors.New("none of the requested lines can be refunded")
)

/* =========================================================
   Ports
========================================================= */

// ProcessRefundArgs feeds the atomic refund procedure: mark the chosen lines
// refunded, stamp the provider refund ID, and derive the payment status from
// the post-update line facts, all in one transaction. Deriving inside the
// procedure keeps concurrent refunds convergent; a stale caller snapshot can
// never write a status the lines contradict.
type ProcessRefundArgs struct {
	PaymentID      uuid.UUID
	LineIDs        []uuid.UUID
	StripeRefundID string // empty for cash refunds
}

type RefundStore interface {
	LoadPaymentWithLines(ctx context.Context, paymentID uuid.UUID) (*model.PaymentModel, error)
	ProcessRefund(ctx context.Context, args ProcessRefundArgs) error
}

type RefundGateway interface {
	RefundPayment(ctx context.Context, paymentIntentID string, amountCents int64) (string, error)
}

/* =========================================================
   Service
========================================================= */

type RefundService struct {
	Store   RefundStore
	Gateway RefundGateway
}

func NewRefundService(store RefundStore, gw RefundGateway) *RefundService {
	return &RefundService{Store: store, Gateway: gw}
}

// RefundLines refunds the selected line items. Lines already refunded or not
// on this payment are dropped; at least one refundable line must remain. Card
// payments hit the provider first and abort on failure, so money is never
// marked returned locally before it actually moved.
func (s *RefundService) RefundLines(ctx context.Context, paymentID uuid.UUID, lineIDs []uuid.UUID) (*model.PaymentModel, error) {
	payment, err := s.Store.LoadPaymentWithLines(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.PaymentStatus == model.PaymentStatusFailed {
		return nil, ErrNothingToRefund
	}

	requested := make(map[uuid.UUID]bool, len(lineIDs))
	for _, id := range lineIDs {
		requested[id] = true
	}

	var refundable []*model.PaymentAthleteModel
	var amountCents int64
	for i := range payment.Lines {
		l := &payment.Lines[i]
		if !requested[l.PaymentAthleteID] || l.Refunded() {
			continue
		}
		refundable = append(refundable, l)
		amountCents += l.LineCents()
	}
	if len(refundable) == 0 {
		return nil, ErrNothingToRefund
	}

	args := ProcessRefundArgs{PaymentID: payment.PaymentID}
	for _, l := range refundable {
		args.LineIDs = append(args.LineIDs, l.PaymentAthleteID)
	}
	// Cash was collected in person; the provider is not involved.
	if payment.PaymentStripePaymentIntentID != "" && payment.PaymentStatus != model.PaymentStatusCash {
		refundID, err := s.Gateway.RefundPayment(ctx, payment.PaymentStripePaymentIntentID, amountCents)
		if err != nil {
			return nil, fmt.Errorf("provider refund: %w", err)
		}
		args.StripeRefundID = refundID
	}

	if err := s.Store.ProcessRefund(ctx, args); err != nil {
		if args.StripeRefundID != "" {
			// Money moved at the provider but not in our books. This needs a
			// human; the refund ID is the thread to pull.
			log.Printf("[ERROR] refund %s succeeded at provider but local update failed for payment %s: %v. Manual reconciliation required.",
				args.StripeRefundID, payment.PaymentID, err)
		}
		return nil, fmt.Errorf("record refund: %w", err)
	}

	return s.Store.LoadPaymentWithLines(ctx, paymentID)
}
