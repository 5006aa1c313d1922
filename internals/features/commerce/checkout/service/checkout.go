// file: internals/features/commerce/checkout/service/checkout.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	stripegw "athletiq_backend/internals/platform/stripe"
)

var (
	ErrWaiverRequired = errors.New("waiver must be signed before checkout")
	ErrEmptyCart      = errors.New("cart is empty")
)

// ErrSessionClosed carries the name of the session that went inactive between
// cart-add and checkout so the caller can tell the user which line to remove.
type ErrSessionClosed struct {
	SessionName string
}

func (e *ErrSessionClosed) Error() string {
	return fmt.Sprintf("session %q is no longer open for registration", e.SessionName)
}

// CartLine is one cart row joined with its session, as loaded for checkout.
type CartLine struct {
	SessionID     uuid.UUID
	SessionName   string
	StripePriceID string
	LocalActive   bool
	AthleteID     uuid.UUID
	Quantity      int
}

// CheckoutUser is the slice of the account a checkout needs.
type CheckoutUser struct {
	ID               uuid.UUID
	Email            string
	Name             string
	WaiverSigned     bool
	StripeCustomerID *string
}

type Gateway interface {
	PriceActive(ctx context.Context, priceID string) (bool, error)
	EnsureCustomer(ctx context.Context, email, name, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, in stripegw.CheckoutInput) (string, error)
}

type Store interface {
	LoadUser(ctx context.Context, userID uuid.UUID) (*CheckoutUser, error)
	LoadCartLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error)
	SaveStripeCustomerID(ctx context.Context, userID uuid.UUID, customerID string) error
}

type CheckoutService struct {
	Store      Store
	Gateway    Gateway
	SuccessURL string
	CancelURL  string
}

func NewCheckoutService(store Store, gw Gateway, successURL, cancelURL string) *CheckoutService {
	return &CheckoutService{Store: store, Gateway: gw, SuccessURL: successURL, CancelURL: cancelURL}
}

// BuildCheckout validates the cart and returns a hosted checkout URL. The
// waiver is a hard precondition; every line's session must be open both
// locally and on the payment provider.
func (s *CheckoutService) BuildCheckout(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.Store.LoadUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if !user.WaiverSigned {
		return "", ErrWaiverRequired
	}

	lines, err := s.Store.LoadCartLines(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load cart: %w", err)
	}
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	for _, l := range lines {
		if !l.LocalActive {
			return "", &ErrSessionClosed{SessionName: l.SessionName}
		}
		active, err := s.Gateway.PriceActive(ctx, l.StripePriceID)
		if err != nil {
			return "", fmt.Errorf("check price %s: %w", l.StripePriceID, err)
		}
		if !active {
			return "", &ErrSessionClosed{SessionName: l.SessionName}
		}
	}

	customerID, err := s.resolveCustomer(ctx, user)
	if err != nil {
		return "", err
	}

	in := stripegw.CheckoutInput{
		CustomerID: customerID,
		UserID:     userID.String(),
		SuccessURL: s.SuccessURL,
		CancelURL:  s.CancelURL,
		Lines:      make([]stripegw.CheckoutLineInput, 0, len(lines)),
	}
	for _, l := range lines {
		in.Lines = append(in.Lines, stripegw.CheckoutLineInput{
			PriceID:   l.StripePriceID,
			Quantity:  int64(l.Quantity),
			AthleteID: l.AthleteID.String(),
			SessionID: l.SessionID.String(),
		})
	}

	url, err := s.Gateway.CreateCheckoutSession(ctx, in)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return url, nil
}

// resolveCustomer reuses the stored provider customer or creates one lazily.
// Persisting the new ID is best-effort; the checkout proceeds either way and
// the webhook can still resolve the user from session metadata.
func (s *CheckoutService) resolveCustomer(ctx context.Context, user *CheckoutUser) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	customerID, err := s.Gateway.EnsureCustomer(ctx, user.Email, user.Name, user.ID.String())
	if err != nil {
		return "", fmt.Errorf("ensure customer: %w", err)
	}
	if err := s.Store.SaveStripeCustomerID(ctx, user.ID, customerID); err != nil {
		log.Printf("[WARN] persist stripe customer %s for user %s: %v", customerID, user.ID, err)
	}
	return customerID, nil
}
