package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	stripegw "athletiq_backend/internals/platform/stripe"
)

type fakeGateway struct {
	inactivePrices map[string]bool
	priceErr       error

	customerID  string
	customerErr error

	checkoutURL string
	checkoutErr error
	lastInput   stripegw.CheckoutInput
	calls       int
}

func (g *fakeGateway) PriceActive(_ context.Context, priceID string) (bool, error) {
	if g.priceErr != nil {
		return false, g.priceErr
	}
	return !g.inactivePrices[priceID], nil
}

func (g *fakeGateway) EnsureCustomer(_ context.Context, _, _, _ string) (string, error) {
	if g.customerErr != nil {
		return "", g.customerErr
	}
	return g.customerID, nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, in stripegw.CheckoutInput) (string, error) {
	g.calls++
	g.lastInput = in
	if g.checkoutErr != nil {
		return "", g.checkoutErr
	}
	return g.checkoutURL, nil
}

type fakeStore struct {
	user    *CheckoutUser
	userErr error

	lines    []CartLine
	linesErr error

	savedCustomerID string
	saveErr         error
}

func (s *fakeStore) LoadUser(_ context.Context, _ uuid.UUID) (*CheckoutUser, error) {
	if s.userErr != nil {
		return nil, s.userErr
	}
	return s.user, nil
}

func (s *fakeStore) LoadCartLines(_ context.Context, _ uuid.UUID) ([]CartLine, error) {
	if s.linesErr != nil {
		return nil, s.linesErr
	}
	return s.lines, nil
}

func (s *fakeStore) SaveStripeCustomerID(_ context.Context, _ uuid.UUID, customerID string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.savedCustomerID = customerID
	return nil
}

func signedUser() *CheckoutUser {
	return &CheckoutUser{
		ID:           uuid.New(),
		Email:        "parent@example.com",
		Name:         "Pat Parent",
		WaiverSigned: true,
	}
}

func oneLine(priceID string) []CartLine {
	return []CartLine{{
		SessionID:     uuid.New(),
		SessionName:   "Elite Shooting Camp",
		StripePriceID: priceID,
		LocalActive:   true,
		AthleteID:     uuid.New(),
		Quantity:      2,
	}}
}

func TestBuildCheckoutRequiresWaiver(t *testing.T) {
	user := signedUser()
	user.WaiverSigned = false
	store := &fakeStore{user: user, lines: oneLine("price_1")}
	gw := &fakeGateway{customerID: "cus_1", checkoutURL: "https://pay.example/c"}

	svc := NewCheckoutService(store, gw, "https://app/success", "https://app/cancel")
	_, err := svc.BuildCheckout(context.Background(), user.ID)
	if !errors.Is(err, ErrWaiverRequired) {
		t.Fatalf("expected ErrWaiverRequired, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("checkout session should not be created without a waiver")
	}
}

func TestBuildCheckoutRejectsEmptyCart(t *testing.T) {
	user := signedUser()
	store := &fakeStore{user: user, lines: nil}
	gw := &fakeGateway{customerID: "cus_1", checkoutURL: "https://pay.example/c"}

	svc := NewCheckoutService(store, gw, "s", "c")
	_, err := svc.BuildCheckout(context.Background(), user.ID)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestBuildCheckoutRejectsLocallyClosedSession(t *testing.T) {
	user := signedUser()
	lines := oneLine("price_1")
	lines[0].LocalActive = false
	store := &fakeStore{user: user, lines: lines}
	gw := &fakeGateway{customerID: "cus_1", checkoutURL: "https://pay.example/c"}

	svc := NewCheckoutService(store, gw, "s", "c")
	_, err := svc.BuildCheckout(context.Background(), user.ID)
	var closed *ErrSessionClosed
	if !errors.As(err, &closed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if closed.SessionName != "Elite Shooting Camp" {
		t.Errorf("closed session name = %q", closed.SessionName)
	}
}

func TestBuildCheckoutRejectsRemotelyInactivePrice(t *testing.T) {
	user := signedUser()
	store := &fakeStore{user: user, lines: oneLine("price_dead")}
	gw := &fakeGateway{
		inactivePrices: map[string]bool{"price_dead": true},
		customerID:     "cus_1",
	}

	svc := NewCheckoutService(store, gw, "s", "c")
	_, err := svc.BuildCheckout(context.Background(), user.ID)
	var closed *ErrSessionClosed
	if !errors.As(err, &closed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("checkout session should not be created for a closed session")
	}
}

func TestBuildCheckoutCreatesCustomerOnce(t *testing.T) {
	user := signedUser()
	store := &fakeStore{user: user, lines: oneLine("price_1")}
	gw := &fakeGateway{customerID: "cus_new", checkoutURL: "https://pay.example/c"}

	svc := NewCheckoutService(store, gw, "s", "c")
	url, err := svc.BuildCheckout(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://pay.example/c" {
		t.Errorf("url = %q", url)
	}
	if store.savedCustomerID != "cus_new" {
		t.Errorf("new customer ID was not persisted, got %q", store.savedCustomerID)
	}
	if gw.lastInput.CustomerID != "cus_new" {
		t.Errorf("checkout used customer %q", gw.lastInput.CustomerID)
	}
}

func TestBuildCheckoutReusesStoredCustomer(t *testing.T) {
	user := signedUser()
	existing := "cus_existing"
	user.StripeCustomerID = &existing
	store := &fakeStore{user: user, lines: oneLine("price_1")}
	gw := &fakeGateway{customerErr: errors.New("should not be called"), checkoutURL: "https://pay.example/c"}

	svc := NewCheckoutService(store, gw, "s", "c")
	if _, err := svc.BuildCheckout(context.Background(), user.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.lastInput.CustomerID != existing {
		t.Errorf("checkout used customer %q, want %q", gw.lastInput.CustomerID, existing)
	}
}

func TestBuildCheckoutSurvivesCustomerPersistFailure(t *testing.T) {
	user := signedUser()
	store := &fakeStore{user: user, lines: oneLine("price_1"), saveErr: errors.New("db down")}
	gw := &fakeGateway{customerID: "cus_new", checkoutURL: "https://pay.example/c"}

	svc := NewCheckoutService(store, gw, "s", "c")
	url, err := svc.BuildCheckout(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url == "" {
		t.Errorf("expected a checkout URL despite persist failure")
	}
}

func TestBuildCheckoutCarriesCartComposition(t *testing.T) {
	user := signedUser()
	lines := []CartLine{
		{SessionID: uuid.New(), SessionName: "Camp A", StripePriceID: "price_a", LocalActive: true, AthleteID: uuid.New(), Quantity: 1},
		{SessionID: uuid.New(), SessionName: "Camp B", StripePriceID: "price_b", LocalActive: true, AthleteID: uuid.New(), Quantity: 3},
	}
	store := &fakeStore{user: user, lines: lines}
	gw := &fakeGateway{customerID: "cus_1", checkoutURL: "https://pay.example/c"}

	svc := NewCheckoutService(store, gw, "s", "c")
	if _, err := svc.BuildCheckout(context.Background(), user.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gw.lastInput.Lines) != 2 {
		t.Fatalf("got %d checkout lines, want 2", len(gw.lastInput.Lines))
	}
	for i, l := range gw.lastInput.Lines {
		if l.SessionID != lines[i].SessionID.String() || l.AthleteID != lines[i].AthleteID.String() {
			t.Errorf("line %d lost its session/athlete binding", i)
		}
		if l.Quantity != int64(lines[i].Quantity) {
			t.Errorf("line %d quantity = %d, want %d", i, l.Quantity, lines[i].Quantity)
		}
	}
	if gw.lastInput.UserID != user.ID.String() {
		t.Errorf("checkout user_id metadata = %q", gw.lastInput.UserID)
	}
}
