package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"athletiq_backend/internals/features/finance/payments/model"
	stripegw "athletiq_backend/internals/platform/stripe"
)

type fakeWebhookStore struct {
	events map[string]*model.WebhookEventModel

	usersByEmail    map[string]uuid.UUID
	sessionsByPrice map[string]uuid.UUID
	sessionPrices   map[uuid.UUID]int64

	processCalls  int
	processArgs   ProcessPaymentArgs
	processErr    error
	paymentID     uuid.UUID
	processedIDs  []uuid.UUID
	markProcErr   error
	failedReasons []string

	emailClaimed bool
	claimErr     error
}

func newFakeWebhookStore() *fakeWebhookStore {
	return &fakeWebhookStore{
		events:          map[string]*model.WebhookEventModel{},
		usersByEmail:    map[string]uuid.UUID{},
		sessionsByPrice: map[string]uuid.UUID{},
		sessionPrices:   map[uuid.UUID]int64{},
		paymentID:       uuid.New(),
	}
}

func (s *fakeWebhookStore) FindEvent(_ context.Context, id string) (*model.WebhookEventModel, error) {
	return s.events[id], nil
}

func (s *fakeWebhookStore) RecordEvent(_ context.Context, id, typ string, payload []byte) (*model.WebhookEventModel, error) {
	ev := &model.WebhookEventModel{
		WebhookEventID:       uuid.New(),
		WebhookEventStripeID: id,
		WebhookEventType:     typ,
		WebhookEventPayload:  payload,
	}
	s.events[id] = ev
	return ev, nil
}

func (s *fakeWebhookStore) MarkProcessed(_ context.Context, eventID uuid.UUID) error {
	if s.markProcErr != nil {
		return s.markProcErr
	}
	s.processedIDs = append(s.processedIDs, eventID)
	for _, ev := range s.events {
		if ev.WebhookEventID == eventID {
			now := time.Now()
			ev.WebhookEventProcessedAt = &now
		}
	}
	return nil
}

func (s *fakeWebhookStore) MarkFailed(_ context.Context, _ uuid.UUID, reason string) error {
	s.failedReasons = append(s.failedReasons, reason)
	return nil
}

func (s *fakeWebhookStore) FindUserIDByEmail(_ context.Context, email string) (uuid.UUID, error) {
	if id, ok := s.usersByEmail[email]; ok {
		return id, nil
	}
	return uuid.Nil, errors.New("not found")
}

func (s *fakeWebhookStore) SessionByStripePrice(_ context.Context, priceID string) (uuid.UUID, int64, error) {
	id, ok := s.sessionsByPrice[priceID]
	if !ok {
		return uuid.Nil, 0, errors.New("not found")
	}
	return id, s.sessionPrices[id], nil
}

func (s *fakeWebhookStore) SessionPrice(_ context.Context, sessionID uuid.UUID) (int64, error) {
	cents, ok := s.sessionPrices[sessionID]
	if !ok {
		return 0, errors.New("not found")
	}
	return cents, nil
}

func (s *fakeWebhookStore) ProcessPayment(_ context.Context, args ProcessPaymentArgs) (uuid.UUID, error) {
	s.processCalls++
	s.processArgs = args
	if s.processErr != nil {
		return uuid.Nil, s.processErr
	}
	return s.paymentID, nil
}

func (s *fakeWebhookStore) ClaimEmail(_ context.Context, _ uuid.UUID) (bool, error) {
	if s.claimErr != nil {
		return false, s.claimErr
	}
	if s.emailClaimed {
		return false, nil
	}
	s.emailClaimed = true
	return true, nil
}

type fakeCustomerGateway struct {
	userIDs map[string]string
	err     error
}

func (g *fakeCustomerGateway) CustomerUserID(_ context.Context, customerID string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.userIDs[customerID], nil
}

type fakeMailer struct {
	sent    []ConfirmationEmail
	sendErr error
}

func (m *fakeMailer) SendConfirmation(_ context.Context, email ConfirmationEmail) error {
	m.sent = append(m.sent, email)
	return m.sendErr
}

func completedEvent(sessionID, athleteID uuid.UUID, userID string) *stripegw.CheckoutEvent {
	return &stripegw.CheckoutEvent{
		EventID:         "evt_1",
		EventType:       "checkout.session.completed",
		CheckoutID:      "cs_1",
		PaymentIntentID: "pi_1",
		CustomerID:      "cus_1",
		CustomerEmail:   "parent@example.com",
		UserID:          userID,
		AmountCents:     5000,
		Currency:        "usd",
		Lines: []stripegw.CheckoutLine{
			{PriceID: "price_1", Quantity: 2, AthleteID: athleteID.String(), SessionID: sessionID.String()},
		},
	}
}

func TestProcessRegistersAndSendsEmail(t *testing.T) {
	sessionID, athleteID, userID := uuid.New(), uuid.New(), uuid.New()
	store := newFakeWebhookStore()
	store.sessionPrices[sessionID] = 2500
	gw := &fakeCustomerGateway{userIDs: map[string]string{"cus_1": userID.String()}}
	mailer := &fakeMailer{}

	proc := NewWebhookProcessor(store, gw, mailer)
	ev := completedEvent(sessionID, athleteID, "")
	if err := proc.Process(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.processCalls != 1 {
		t.Fatalf("ProcessPayment calls = %d, want 1", store.processCalls)
	}
	if store.processArgs.UserID != userID {
		t.Errorf("resolved user = %s, want %s", store.processArgs.UserID, userID)
	}
	if len(store.processArgs.SessionIDs) != 1 || store.processArgs.SessionIDs[0] != sessionID {
		t.Errorf("resolved sessions = %v", store.processArgs.SessionIDs)
	}
	if store.processArgs.UnitCents[0] != 2500 {
		t.Errorf("unit cents = %d, want 2500", store.processArgs.UnitCents[0])
	}
	if len(store.processedIDs) != 1 {
		t.Errorf("event was not marked processed")
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("confirmation emails sent = %d, want 1", len(mailer.sent))
	}
	if mailer.sent[0].PaymentID != store.paymentID {
		t.Errorf("email references payment %s", mailer.sent[0].PaymentID)
	}
}

func TestProcessSkipsAlreadyProcessedEvent(t *testing.T) {
	sessionID, athleteID := uuid.New(), uuid.New()
	store := newFakeWebhookStore()
	store.sessionPrices[sessionID] = 2500
	now := time.Now()
	store.events["evt_1"] = &model.WebhookEventModel{
		WebhookEventID:          uuid.New(),
		WebhookEventStripeID:    "evt_1",
		WebhookEventProcessedAt: &now,
	}
	gw := &fakeCustomerGateway{userIDs: map[string]string{"cus_1": uuid.New().String()}}
	mailer := &fakeMailer{}

	proc := NewWebhookProcessor(store, gw, mailer)
	if err := proc.Process(context.Background(), completedEvent(sessionID, athleteID, "")); err != nil {
		t.Fatalf("replay should be a clean no-op, got %v", err)
	}
	if store.processCalls != 0 {
		t.Errorf("replayed event must not register again")
	}
	if len(mailer.sent) != 0 {
		t.Errorf("replayed event must not resend email")
	}
}

func TestProcessRetriesSeenButUnprocessedEvent(t *testing.T) {
	sessionID, athleteID := uuid.New(), uuid.New()
	store := newFakeWebhookStore()
	store.sessionPrices[sessionID] = 2500
	store.events["evt_1"] = &model.WebhookEventModel{
		WebhookEventID:       uuid.New(),
		WebhookEventStripeID: "evt_1",
	}
	gw := &fakeCustomerGateway{userIDs: map[string]string{"cus_1": uuid.New().String()}}

	proc := NewWebhookProcessor(store, gw, &fakeMailer{})
	if err := proc.Process(context.Background(), completedEvent(sessionID, athleteID, "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.processCalls != 1 {
		t.Errorf("a seen but unprocessed event should be retried")
	}
}

func TestProcessIgnoresOtherEventTypes(t *testing.T) {
	store := newFakeWebhookStore()
	proc := NewWebhookProcessor(store, &fakeCustomerGateway{}, &fakeMailer{})

	ev := &stripegw.CheckoutEvent{EventID: "evt_2", EventType: "payment_intent.created"}
	if err := proc.Process(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.processCalls != 0 {
		t.Errorf("non-completion events must not register")
	}
}

func TestProcessUserResolutionFallsBackToMetadataThenEmail(t *testing.T) {
	sessionID, athleteID := uuid.New(), uuid.New()

	t.Run("session metadata", func(t *testing.T) {
		store := newFakeWebhookStore()
		store.sessionPrices[sessionID] = 2500
		metaUser := uuid.New()
		gw := &fakeCustomerGateway{err: errors.New("stripe down")}

		proc := NewWebhookProcessor(store, gw, &fakeMailer{})
		if err := proc.Process(context.Background(), completedEvent(sessionID, athleteID, metaUser.String())); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.processArgs.UserID != metaUser {
			t.Errorf("resolved user = %s, want metadata user %s", store.processArgs.UserID, metaUser)
		}
	})

	t.Run("email lookup", func(t *testing.T) {
		store := newFakeWebhookStore()
		store.sessionPrices[sessionID] = 2500
		emailUser := uuid.New()
		store.usersByEmail["parent@example.com"] = emailUser
		gw := &fakeCustomerGateway{} // no metadata on the customer

		proc := NewWebhookProcessor(store, gw, &fakeMailer{})
		if err := proc.Process(context.Background(), completedEvent(sessionID, athleteID, "")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.processArgs.UserID != emailUser {
			t.Errorf("resolved user = %s, want email user %s", store.processArgs.UserID, emailUser)
		}
	})

	t.Run("unresolvable", func(t *testing.T) {
		store := newFakeWebhookStore()
		store.sessionPrices[sessionID] = 2500
		gw := &fakeCustomerGateway{}

		proc := NewWebhookProcessor(store, gw, &fakeMailer{})
		err := proc.Process(context.Background(), completedEvent(sessionID, athleteID, ""))
		if !errors.Is(err, ErrUserUnresolved) {
			t.Fatalf("expected ErrUserUnresolved, got %v", err)
		}
		if len(store.failedReasons) == 0 {
			t.Errorf("failure should be recorded on the ledger")
		}
	})
}

func TestProcessResolvesLinesByPriceAndSkipsOrphans(t *testing.T) {
	sessionID, athleteID, userID := uuid.New(), uuid.New(), uuid.New()
	store := newFakeWebhookStore()
	store.sessionsByPrice["price_x"] = sessionID
	store.sessionPrices[sessionID] = 4000
	gw := &fakeCustomerGateway{userIDs: map[string]string{"cus_1": userID.String()}}

	ev := completedEvent(sessionID, athleteID, "")
	ev.Lines = []stripegw.CheckoutLine{
		// No session metadata; must resolve through the price.
		{PriceID: "price_x", Quantity: 1, AthleteID: athleteID.String()},
		// No athlete; nobody to register, skipped.
		{PriceID: "price_x", Quantity: 1},
	}

	proc := NewWebhookProcessor(store, gw, &fakeMailer{})
	if err := proc.Process(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.processArgs.SessionIDs) != 1 {
		t.Fatalf("resolved lines = %d, want 1", len(store.processArgs.SessionIDs))
	}
	if store.processArgs.SessionIDs[0] != sessionID {
		t.Errorf("price fallback resolved session %s, want %s", store.processArgs.SessionIDs[0], sessionID)
	}
}

func TestProcessFailsWhenNoLinesResolve(t *testing.T) {
	sessionID, athleteID, userID := uuid.New(), uuid.New(), uuid.New()
	store := newFakeWebhookStore()
	store.sessionPrices[sessionID] = 2500
	gw := &fakeCustomerGateway{userIDs: map[string]string{"cus_1": userID.String()}}

	ev := completedEvent(sessionID, athleteID, "")
	ev.Lines = []stripegw.CheckoutLine{{PriceID: "price_unknown", Quantity: 1, AthleteID: athleteID.String()}}

	proc := NewWebhookProcessor(store, gw, &fakeMailer{})
	err := proc.Process(context.Background(), ev)
	if !errors.Is(err, ErrNoLinesResolved) {
		t.Fatalf("expected ErrNoLinesResolved, got %v", err)
	}
	if store.processCalls != 0 {
		t.Errorf("nothing should be registered when no lines resolve")
	}
}

func TestProcessSendsNoEmailWhenAlreadyClaimed(t *testing.T) {
	sessionID, athleteID, userID := uuid.New(), uuid.New(), uuid.New()
	store := newFakeWebhookStore()
	store.sessionPrices[sessionID] = 2500
	// Another worker won the claim; this delivery must stay silent.
	store.emailClaimed = true
	gw := &fakeCustomerGateway{userIDs: map[string]string{"cus_1": userID.String()}}
	mailer := &fakeMailer{}

	proc := NewWebhookProcessor(store, gw, mailer)
	if err := proc.Process(context.Background(), completedEvent(sessionID, athleteID, "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("confirmation emails sent = %d, want 0 when the claim is already taken", len(mailer.sent))
	}
}

func TestProcessSwallowsEmailFailures(t *testing.T) {
	sessionID, athleteID, userID := uuid.New(), uuid.New(), uuid.New()
	store := newFakeWebhookStore()
	store.sessionPrices[sessionID] = 2500
	gw := &fakeCustomerGateway{userIDs: map[string]string{"cus_1": userID.String()}}
	mailer := &fakeMailer{sendErr: errors.New("smtp down")}

	proc := NewWebhookProcessor(store, gw, mailer)
	if err := proc.Process(context.Background(), completedEvent(sessionID, athleteID, "")); err != nil {
		t.Fatalf("email failure must not fail the webhook: %v", err)
	}
}

func TestProcessSurvivesMarkProcessedFailure(t *testing.T) {
	sessionID, athleteID, userID := uuid.New(), uuid.New(), uuid.New()
	store := newFakeWebhookStore()
	store.sessionPrices[sessionID] = 2500
	store.markProcErr = errors.New("db hiccup")
	gw := &fakeCustomerGateway{userIDs: map[string]string{"cus_1": userID.String()}}

	proc := NewWebhookProcessor(store, gw, &fakeMailer{})
	if err := proc.Process(context.Background(), completedEvent(sessionID, athleteID, "")); err != nil {
		t.Fatalf("ledger bookkeeping failure must not fail a durable registration: %v", err)
	}
}
