package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"athletiq_backend/internals/features/finance/payments/model"
)

type fakeRefundStore struct {
	payment *model.PaymentModel

	refundArgs  *ProcessRefundArgs
	refundErr   error
	refundCalls int
}

func (s *fakeRefundStore) LoadPaymentWithLines(_ context.Context, paymentID uuid.UUID) (*model.PaymentModel, error) {
	if s.payment == nil || s.payment.PaymentID != paymentID {
		return nil, nil
	}
	return s.payment, nil
}

func (s *fakeRefundStore) ProcessRefund(_ context.Context, args ProcessRefundArgs) error {
	s.refundCalls++
	s.refundArgs = &args
	if s.refundErr != nil {
		return s.refundErr
	}
	// Mirror what the procedure does: mark the lines, then derive the status
	// from the lines as they stand after the update.
	now := time.Now()
	marked := map[uuid.UUID]bool{}
	for _, id := range args.LineIDs {
		marked[id] = true
	}
	for i := range s.payment.Lines {
		if marked[s.payment.Lines[i].PaymentAthleteID] {
			s.payment.Lines[i].PaymentAthleteRefundedAt = &now
		}
	}
	s.payment.PaymentStatus = DeriveStatus(BaseStatus(s.payment), s.payment.Lines)
	return nil
}

// staleRefundStore serves every load from a pristine snapshot while refunds
// mutate the authoritative payment, the way two admins racing each other both
// read the payment before either refund lands.
type staleRefundStore struct {
	authoritative *model.PaymentModel
}

func (s *staleRefundStore) LoadPaymentWithLines(_ context.Context, paymentID uuid.UUID) (*model.PaymentModel, error) {
	if s.authoritative.PaymentID != paymentID {
		return nil, nil
	}
	snapshot := *s.authoritative
	snapshot.Lines = make([]model.PaymentAthleteModel, len(s.authoritative.Lines))
	for i, l := range s.authoritative.Lines {
		l.PaymentAthleteRefundedAt = nil
		snapshot.Lines[i] = l
	}
	snapshot.PaymentStatus = model.PaymentStatusSucceeded
	return &snapshot, nil
}

func (s *staleRefundStore) ProcessRefund(_ context.Context, args ProcessRefundArgs) error {
	now := time.Now()
	marked := map[uuid.UUID]bool{}
	for _, id := range args.LineIDs {
		marked[id] = true
	}
	for i := range s.authoritative.Lines {
		if marked[s.authoritative.Lines[i].PaymentAthleteID] {
			s.authoritative.Lines[i].PaymentAthleteRefundedAt = &now
		}
	}
	s.authoritative.PaymentStatus = DeriveStatus(BaseStatus(s.authoritative), s.authoritative.Lines)
	return nil
}

type fakeRefundGateway struct {
	refundID string
	err      error

	calls      int
	lastIntent string
	lastAmount int64
}

func (g *fakeRefundGateway) RefundPayment(_ context.Context, paymentIntentID string, amountCents int64) (string, error) {
	g.calls++
	g.lastIntent = paymentIntentID
	g.lastAmount = amountCents
	if g.err != nil {
		return "", g.err
	}
	return g.refundID, nil
}

func cardPayment(lineCount int) *model.PaymentModel {
	p := &model.PaymentModel{
		PaymentID:                    uuid.New(),
		PaymentUserID:                uuid.New(),
		PaymentStatus:                model.PaymentStatusSucceeded,
		PaymentStripePaymentIntentID: "pi_1",
		PaymentCurrency:              "usd",
	}
	for i := 0; i < lineCount; i++ {
		p.Lines = append(p.Lines, model.PaymentAthleteModel{
			PaymentAthleteID:        uuid.New(),
			PaymentAthletePaymentID: p.PaymentID,
			PaymentAthleteQuantity:  1,
			PaymentAthleteUnitCents: 2500,
		})
	}
	return p
}

func TestRefundLinesCardHitsProviderFirst(t *testing.T) {
	payment := cardPayment(2)
	store := &fakeRefundStore{payment: payment}
	gw := &fakeRefundGateway{refundID: "re_1"}

	svc := NewRefundService(store, gw)
	got, err := svc.RefundLines(context.Background(), payment.PaymentID, []uuid.UUID{payment.Lines[0].PaymentAthleteID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gw.calls != 1 {
		t.Fatalf("provider refund calls = %d, want 1", gw.calls)
	}
	if gw.lastIntent != "pi_1" || gw.lastAmount != 2500 {
		t.Errorf("provider refund (%s, %d), want (pi_1, 2500)", gw.lastIntent, gw.lastAmount)
	}
	if store.refundArgs.StripeRefundID != "re_1" {
		t.Errorf("refund ID not recorded, got %q", store.refundArgs.StripeRefundID)
	}
	if got.PaymentStatus != model.PaymentStatusPartialRefund {
		t.Errorf("status = %q, want partial_refund", got.PaymentStatus)
	}
}

func TestRefundLinesAllLinesYieldsRefundedStatus(t *testing.T) {
	payment := cardPayment(2)
	store := &fakeRefundStore{payment: payment}
	gw := &fakeRefundGateway{refundID: "re_1"}

	svc := NewRefundService(store, gw)
	got, err := svc.RefundLines(context.Background(), payment.PaymentID,
		[]uuid.UUID{payment.Lines[0].PaymentAthleteID, payment.Lines[1].PaymentAthleteID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.lastAmount != 5000 {
		t.Errorf("refund amount = %d, want 5000", gw.lastAmount)
	}
	if got.PaymentStatus != model.PaymentStatusRefunded {
		t.Errorf("status = %q, want refunded", got.PaymentStatus)
	}
}

func TestRefundLinesProviderFailureAborts(t *testing.T) {
	payment := cardPayment(1)
	store := &fakeRefundStore{payment: payment}
	gw := &fakeRefundGateway{err: errors.New("card network timeout")}

	svc := NewRefundService(store, gw)
	_, err := svc.RefundLines(context.Background(), payment.PaymentID, []uuid.UUID{payment.Lines[0].PaymentAthleteID})
	if err == nil {
		t.Fatalf("expected provider failure to propagate")
	}
	if store.refundCalls != 0 {
		t.Errorf("local state must not change when the provider refund failed")
	}
	if payment.Lines[0].Refunded() {
		t.Errorf("line marked refunded despite provider failure")
	}
}

func TestRefundLinesCashSkipsProvider(t *testing.T) {
	payment := cardPayment(1)
	payment.PaymentStatus = model.PaymentStatusCash
	payment.PaymentStripePaymentIntentID = ""
	store := &fakeRefundStore{payment: payment}
	gw := &fakeRefundGateway{err: errors.New("should not be called")}

	svc := NewRefundService(store, gw)
	got, err := svc.RefundLines(context.Background(), payment.PaymentID, []uuid.UUID{payment.Lines[0].PaymentAthleteID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("cash refunds must not touch the provider")
	}
	if store.refundArgs.StripeRefundID != "" {
		t.Errorf("cash refund carries refund ID %q", store.refundArgs.StripeRefundID)
	}
	if got.PaymentStatus != model.PaymentStatusRefunded {
		t.Errorf("status = %q, want refunded", got.PaymentStatus)
	}
}

func TestRefundLinesFiltersAlreadyRefunded(t *testing.T) {
	payment := cardPayment(2)
	now := time.Now()
	payment.Lines[0].PaymentAthleteRefundedAt = &now
	payment.PaymentStatus = model.PaymentStatusPartialRefund
	store := &fakeRefundStore{payment: payment}
	gw := &fakeRefundGateway{refundID: "re_2"}

	svc := NewRefundService(store, gw)

	// Only the already-refunded line requested: nothing to do.
	_, err := svc.RefundLines(context.Background(), payment.PaymentID, []uuid.UUID{payment.Lines[0].PaymentAthleteID})
	if !errors.Is(err, ErrNothingToRefund) {
		t.Fatalf("expected ErrNothingToRefund, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("no provider call for an empty refund")
	}

	// Both requested: the refunded one is dropped, only the other is charged.
	got, err := svc.RefundLines(context.Background(), payment.PaymentID,
		[]uuid.UUID{payment.Lines[0].PaymentAthleteID, payment.Lines[1].PaymentAthleteID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.lastAmount != 2500 {
		t.Errorf("refund amount = %d, want 2500 for the single refundable line", gw.lastAmount)
	}
	if got.PaymentStatus != model.PaymentStatusRefunded {
		t.Errorf("status = %q, want refunded once every line is refunded", got.PaymentStatus)
	}
}

func TestRefundLinesLocalFailureAfterProviderSuccess(t *testing.T) {
	payment := cardPayment(1)
	store := &fakeRefundStore{payment: payment, refundErr: errors.New("deadlock")}
	gw := &fakeRefundGateway{refundID: "re_3"}

	svc := NewRefundService(store, gw)
	_, err := svc.RefundLines(context.Background(), payment.PaymentID, []uuid.UUID{payment.Lines[0].PaymentAthleteID})
	if err == nil {
		t.Fatalf("expected the local failure to propagate for manual follow-up")
	}
	if gw.calls != 1 {
		t.Errorf("provider refund should have been attempted once")
	}
}

func TestRefundLinesConcurrentRefundsSettleToRefunded(t *testing.T) {
	payment := cardPayment(2)
	store := &staleRefundStore{authoritative: payment}
	gw := &fakeRefundGateway{refundID: "re_race"}

	svc := NewRefundService(store, gw)

	// Both refunds see the same pre-refund snapshot, one line each. The
	// status must come from the lines as committed, not from either caller's
	// stale view.
	if _, err := svc.RefundLines(context.Background(), payment.PaymentID, []uuid.UUID{payment.Lines[0].PaymentAthleteID}); err != nil {
		t.Fatalf("first refund: %v", err)
	}
	if _, err := svc.RefundLines(context.Background(), payment.PaymentID, []uuid.UUID{payment.Lines[1].PaymentAthleteID}); err != nil {
		t.Fatalf("second refund: %v", err)
	}

	if !payment.Lines[0].Refunded() || !payment.Lines[1].Refunded() {
		t.Fatalf("both lines should be refunded")
	}
	if payment.PaymentStatus != model.PaymentStatusRefunded {
		t.Errorf("status = %q with every line refunded, want refunded", payment.PaymentStatus)
	}
}

func TestRefundLinesCashStatusNeverCallsProvider(t *testing.T) {
	// Bad data: a cash payment carrying a stray intent reference must still
	// never trigger a provider refund.
	payment := cardPayment(1)
	payment.PaymentStatus = model.PaymentStatusCash
	store := &fakeRefundStore{payment: payment}
	gw := &fakeRefundGateway{err: errors.New("should not be called")}

	svc := NewRefundService(store, gw)
	if _, err := svc.RefundLines(context.Background(), payment.PaymentID, []uuid.UUID{payment.Lines[0].PaymentAthleteID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("provider called %d times for a cash payment", gw.calls)
	}
}

func TestRefundLinesUnknownPayment(t *testing.T) {
	store := &fakeRefundStore{}
	svc := NewRefundService(store, &fakeRefundGateway{})

	_, err := svc.RefundLines(context.Background(), uuid.New(), []uuid.UUID{uuid.New()})
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}
