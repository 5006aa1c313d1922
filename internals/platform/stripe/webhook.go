// file: internals/platform/stripe/webhook.go
package stripegw

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/webhook"
)

/* =========================================================
   Normalized webhook event
========================================================= */

// CheckoutLine is one purchased line as recovered from session metadata.
// AthleteID may be empty when the line was added outside the normal flow.
type CheckoutLine struct {
	PriceID   string `json:"PriceID"`
	Quantity  int64  `json:"Quantity"`
	AthleteID string `json:"AthleteID"`
	SessionID string `json:"SessionID"`
}

// CheckoutEvent is the provider-neutral shape of a completed checkout.
type CheckoutEvent struct {
	EventID         string
	EventType       string
	CheckoutID      string
	PaymentIntentID string
	CustomerID      string
	CustomerEmail   string
	UserID          string // from session metadata, may be empty
	AmountCents     int64
	Currency        string
	Lines           []CheckoutLine
	RawPayload      []byte
}

// Completed reports whether the event is the checkout completion we act on.
func (e *CheckoutEvent) Completed() bool {
	return e.EventType == "checkout.session.completed"
}

/* =========================================================
   Signature verification and parsing
========================================================= */

// ParseWebhookEvent verifies the signature and normalizes the event. Events
// other than checkout completion come back with Completed() == false so the
// caller can acknowledge and skip them.
func ParseWebhookEvent(ctx context.Context, payload []byte, sigHeader, secret string) (*CheckoutEvent, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, secret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	out := &CheckoutEvent{
		EventID:    event.ID,
		EventType:  string(event.Type),
		RawPayload: payload,
	}
	if !out.Completed() {
		return out, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("unmarshal checkout session: %w", err)
	}

	out.CheckoutID = cs.ID
	out.AmountCents = cs.AmountTotal
	out.Currency = string(cs.Currency)
	if cs.PaymentIntent != nil {
		out.PaymentIntentID = cs.PaymentIntent.ID
	}
	if cs.Customer != nil {
		out.CustomerID = cs.Customer.ID
	}
	if cs.CustomerDetails != nil {
		out.CustomerEmail = cs.CustomerDetails.Email
	}
	out.UserID = cs.Metadata["user_id"]

	if raw := cs.Metadata["cart"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &out.Lines); err != nil {
			return nil, fmt.Errorf("unmarshal cart metadata: %w", err)
		}
	} else {
		// Old or hand-built sessions without cart metadata: fall back to the
		// line items API and resolve sessions by price later.
		lines, err := fetchLineItems(ctx, cs.ID)
		if err != nil {
			return nil, err
		}
		out.Lines = lines
	}

	return out, nil
}

func fetchLineItems(ctx context.Context, checkoutID string) ([]CheckoutLine, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{Session: stripe.String(checkoutID)}
	params.Context = ctx

	var lines []CheckoutLine
	it := session.ListLineItems(params)
	for it.Next() {
		li := it.LineItem()
		l := CheckoutLine{Quantity: li.Quantity}
		if li.Price != nil {
			l.PriceID = li.Price.ID
		}
		lines = append(lines, l)
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("list checkout line items: %w", err)
	}
	return lines, nil
}
