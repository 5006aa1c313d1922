// file: internals/platform/stripe/adapter.go
package stripegw

import (
	"context"
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/customer"
	"github.com/stripe/stripe-go/v78/price"
	"github.com/stripe/stripe-go/v78/product"
	"github.com/stripe/stripe-go/v78/refund"
)

/* =========================================================
   Stripe Client
========================================================= */

// Init must be called once at bootstrap before any Client call.
func Init(secretKey string) {
	stripe.Key = secretKey
}

// Client wraps the Stripe API behind the small ports the feature services
// declare. Stateless; construct once per process.
type Client struct{}

func NewClient() *Client { return &Client{} }

/* =========================================================
   Products & prices (catalog sync)
========================================================= */

type ProductInput struct {
	Name        string
	Description string
	AmountCents int64
	Currency    string
	SessionID   string // local catalog id, mirrored into product metadata
}

// CreateProductWithPrice creates the remote product+price pair for a new
// training session. The local session id rides along as metadata so webhook
// processing can resolve lines without a price lookup.
func (cl *Client) CreateProductWithPrice(ctx context.Context, in ProductInput) (productID, priceID string, err error) {
	pp := &stripe.ProductParams{
		Name:        stripe.String(in.Name),
		Description: stripe.String(in.Description),
		Active:      stripe.Bool(true),
	}
	pp.Context = ctx
	pp.AddMetadata("session_id", in.SessionID)

	prod, err := product.New(pp)
	if err != nil {
		return "", "", fmt.Errorf("stripe create product: %w", err)
	}

	priceID, err = cl.newPrice(ctx, prod.ID, in.AmountCents, in.Currency)
	if err != nil {
		return "", "", err
	}
	return prod.ID, priceID, nil
}

// UpdateProduct pushes name/description changes to the remote product.
func (cl *Client) UpdateProduct(ctx context.Context, productID string, in ProductInput) error {
	pp := &stripe.ProductParams{
		Name:        stripe.String(in.Name),
		Description: stripe.String(in.Description),
	}
	pp.Context = ctx
	if _, err := product.Update(productID, pp); err != nil {
		return fmt.Errorf("stripe update product: %w", err)
	}
	return nil
}

// ReplacePrice creates a fresh price and deactivates the old one (Stripe
// prices are immutable, so amount changes always mean a new price object).
func (cl *Client) ReplacePrice(ctx context.Context, productID, oldPriceID string, amountCents int64, currency string) (string, error) {
	newID, err := cl.newPrice(ctx, productID, amountCents, currency)
	if err != nil {
		return "", err
	}
	op := &stripe.PriceParams{Active: stripe.Bool(false)}
	op.Context = ctx
	if _, err := price.Update(oldPriceID, op); err != nil {
		return "", fmt.Errorf("stripe deactivate old price: %w", err)
	}
	return newID, nil
}

func (cl *Client) SetProductActive(ctx context.Context, productID string, active bool) error {
	pp := &stripe.ProductParams{Active: stripe.Bool(active)}
	pp.Context = ctx
	if _, err := product.Update(productID, pp); err != nil {
		return fmt.Errorf("stripe toggle product: %w", err)
	}
	return nil
}

func (cl *Client) PriceActive(ctx context.Context, priceID string) (bool, error) {
	pp := &stripe.PriceParams{}
	pp.Context = ctx
	p, err := price.Get(priceID, pp)
	if err != nil {
		return false, fmt.Errorf("stripe get price: %w", err)
	}
	return p.Active, nil
}

func (cl *Client) newPrice(ctx context.Context, productID string, amountCents int64, currency string) (string, error) {
	pr := &stripe.PriceParams{
		Product:    stripe.String(productID),
		UnitAmount: stripe.Int64(amountCents),
		Currency:   stripe.String(currency),
	}
	pr.Context = ctx
	p, err := price.New(pr)
	if err != nil {
		return "", fmt.Errorf("stripe create price: %w", err)
	}
	return p.ID, nil
}

/* =========================================================
   Customers
========================================================= */

// EnsureCustomer creates a Stripe customer carrying the local user id as
// metadata. Callers persist the returned id and reuse it.
func (cl *Client) EnsureCustomer(ctx context.Context, email, name, userID string) (string, error) {
	cp := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	cp.Context = ctx
	cp.AddMetadata("user_id", userID)

	cust, err := customer.New(cp)
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	return cust.ID, nil
}

// CustomerUserID reads the local user id back out of customer metadata.
func (cl *Client) CustomerUserID(ctx context.Context, customerID string) (string, error) {
	cp := &stripe.CustomerParams{}
	cp.Context = ctx
	cust, err := customer.Get(customerID, cp)
	if err != nil {
		return "", fmt.Errorf("stripe get customer: %w", err)
	}
	return cust.Metadata["user_id"], nil
}

/* =========================================================
   Hosted checkout
========================================================= */

type CheckoutLineInput struct {
	PriceID   string
	Quantity  int64
	AthleteID string
	SessionID string
}

type CheckoutInput struct {
	CustomerID string
	UserID     string
	SuccessURL string
	CancelURL  string
	Lines      []CheckoutLineInput
}

// CreateCheckoutSession builds the hosted checkout. Cart composition is
// mirrored into session metadata because Stripe line items cannot carry
// per-line metadata; the webhook resolver reads it back from there.
func (cl *Client) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (string, error) {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.Lines))
	for _, l := range in.Lines {
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(l.PriceID),
			Quantity: stripe.Int64(l.Quantity),
		})
	}

	cartMeta, err := json.Marshal(in.Lines)
	if err != nil {
		return "", fmt.Errorf("marshal cart metadata: %w", err)
	}

	sp := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		Customer:   stripe.String(in.CustomerID),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
		LineItems:  items,
	}
	sp.Context = ctx
	sp.AddMetadata("user_id", in.UserID)
	sp.AddMetadata("cart", string(cartMeta))

	s, err := session.New(sp)
	if err != nil {
		return "", fmt.Errorf("stripe create checkout session: %w", err)
	}
	return s.URL, nil
}

/* =========================================================
   Refunds
========================================================= */

// RefundPayment issues a partial or full refund against a payment intent and
// returns the Stripe refund id for the audit trail.
func (cl *Client) RefundPayment(ctx context.Context, paymentIntentID string, amountCents int64) (string, error) {
	rp := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Amount:        stripe.Int64(amountCents),
	}
	rp.Context = ctx
	r, err := refund.New(rp)
	if err != nil {
		return "", fmt.Errorf("stripe refund: %w", err)
	}
	return r.ID, nil
}
