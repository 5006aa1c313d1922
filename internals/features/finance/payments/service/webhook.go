// file: internals/features/finance/payments/service/webhook.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"athletiq_backend/internals/features/finance/payments/model"
	stripegw "athletiq_backend/internals/platform/stripe"
)

var (
	ErrUserUnresolved  = errors.New("could not resolve a local user for this payment")
	ErrNoLinesResolved = errors.New("no purchasable lines could be resolved from this event")
)

/* =========================================================
   Ports
========================================================= */

// ProcessPaymentArgs feeds the atomic registration procedure: one payment
// header plus parallel arrays for the lines. The procedure also clears the
// matching cart rows in the same transaction.
type ProcessPaymentArgs struct {
	UserID          uuid.UUID
	CheckoutID      string
	PaymentIntentID string
	AmountCents     int64
	Currency        string
	SessionIDs      []uuid.UUID
	AthleteIDs      []uuid.UUID
	Quantities      []int32
	UnitCents       []int64
}

type WebhookStore interface {
	// FindEvent returns the ledger row for a provider event ID, nil when unseen.
	FindEvent(ctx context.Context, stripeEventID string) (*model.WebhookEventModel, error)
	RecordEvent(ctx context.Context, stripeEventID, eventType string, payload []byte) (*model.WebhookEventModel, error)
	MarkProcessed(ctx context.Context, eventID uuid.UUID) error
	MarkFailed(ctx context.Context, eventID uuid.UUID, reason string) error

	FindUserIDByEmail(ctx context.Context, email string) (uuid.UUID, error)
	// SessionByStripePrice resolves a session and its list price from a
	// provider price ID. Used when a line lost its session metadata.
	SessionByStripePrice(ctx context.Context, priceID string) (sessionID uuid.UUID, unitCents int64, err error)
	SessionPrice(ctx context.Context, sessionID uuid.UUID) (int64, error)

	ProcessPayment(ctx context.Context, args ProcessPaymentArgs) (paymentID uuid.UUID, err error)
	// ClaimEmail sets the email-sent marker iff it is still unset. Returns
	// false when another worker already claimed it.
	ClaimEmail(ctx context.Context, paymentID uuid.UUID) (bool, error)
}

type CustomerGateway interface {
	CustomerUserID(ctx context.Context, customerID string) (string, error)
}

// ConfirmationEmail is what the mailer needs to confirm a registration.
type ConfirmationEmail struct {
	PaymentID   uuid.UUID
	UserID      uuid.UUID
	AmountCents int64
	Currency    string
	LineCount   int
}

type ConfirmationMailer interface {
	SendConfirmation(ctx context.Context, email ConfirmationEmail) error
}

/* =========================================================
   Processor
========================================================= */

type WebhookProcessor struct {
	Store   WebhookStore
	Gateway CustomerGateway
	Mailer  ConfirmationMailer
}

func NewWebhookProcessor(store WebhookStore, gw CustomerGateway, mailer ConfirmationMailer) *WebhookProcessor {
	return &WebhookProcessor{Store: store, Gateway: gw, Mailer: mailer}
}

// Process turns a verified checkout completion into a registration exactly
// once. Replays of an already-processed event are acknowledged without side
// effects; the durable write happens in a single stored procedure.
func (p *WebhookProcessor) Process(ctx context.Context, ev *stripegw.CheckoutEvent) error {
	if !ev.Completed() {
		log.Printf("[INFO] ignoring event %s of type %s", ev.EventID, ev.EventType)
		return nil
	}

	ledger, err := p.Store.FindEvent(ctx, ev.EventID)
	if err != nil {
		return fmt.Errorf("lookup webhook ledger: %w", err)
	}
	if ledger != nil && ledger.WebhookEventProcessedAt != nil {
		log.Printf("[INFO] webhook event %s already processed, skipping", ev.EventID)
		return nil
	}
	if ledger == nil {
		ledger, err = p.Store.RecordEvent(ctx, ev.EventID, ev.EventType, ev.RawPayload)
		if err != nil {
			return fmt.Errorf("record webhook event: %w", err)
		}
	}

	userID, err := p.resolveUser(ctx, ev)
	if err != nil {
		p.markFailed(ctx, ledger.WebhookEventID, err)
		return err
	}

	args, err := p.resolveLines(ctx, ev)
	if err != nil {
		p.markFailed(ctx, ledger.WebhookEventID, err)
		return err
	}
	args.UserID = userID
	args.CheckoutID = ev.CheckoutID
	args.PaymentIntentID = ev.PaymentIntentID
	args.AmountCents = ev.AmountCents
	args.Currency = ev.Currency

	paymentID, err := p.Store.ProcessPayment(ctx, *args)
	if err != nil {
		p.markFailed(ctx, ledger.WebhookEventID, err)
		return fmt.Errorf("process payment: %w", err)
	}

	// The registration is durable from here on. Bookkeeping failures below
	// must not make the provider retry and double-register.
	if err := p.Store.MarkProcessed(ctx, ledger.WebhookEventID); err != nil {
		log.Printf("[ERROR] mark webhook event %s processed: %v", ev.EventID, err)
	}

	p.sendConfirmation(ctx, paymentID, userID, ev)
	return nil
}

// resolveUser tries, in order: provider customer metadata, checkout session
// metadata, then a lookup by the email the customer typed at checkout.
func (p *WebhookProcessor) resolveUser(ctx context.Context, ev *stripegw.CheckoutEvent) (uuid.UUID, error) {
	if ev.CustomerID != "" {
		raw, err := p.Gateway.CustomerUserID(ctx, ev.CustomerID)
		if err != nil {
			log.Printf("[WARN] fetch customer %s metadata: %v", ev.CustomerID, err)
		} else if id, perr := uuid.Parse(raw); perr == nil {
			return id, nil
		}
	}

	if id, err := uuid.Parse(ev.UserID); err == nil {
		return id, nil
	}

	if ev.CustomerEmail != "" {
		id, err := p.Store.FindUserIDByEmail(ctx, ev.CustomerEmail)
		if err == nil {
			return id, nil
		}
		log.Printf("[WARN] resolve user by email for event %s: %v", ev.EventID, err)
	}

	return uuid.Nil, ErrUserUnresolved
}

// resolveLines maps provider lines back to (session, athlete) pairs. A line
// without a session falls back to a price lookup; a line without an athlete
// cannot register anyone and is skipped with a warning.
func (p *WebhookProcessor) resolveLines(ctx context.Context, ev *stripegw.CheckoutEvent) (*ProcessPaymentArgs, error) {
	args := &ProcessPaymentArgs{}
	for i, l := range ev.Lines {
		var sessionID uuid.UUID
		var unitCents int64
		var err error

		if l.SessionID != "" {
			sessionID, err = uuid.Parse(l.SessionID)
			if err != nil {
				log.Printf("[WARN] event %s line %d: bad session id %q, skipping", ev.EventID, i, l.SessionID)
				continue
			}
			unitCents, err = p.Store.SessionPrice(ctx, sessionID)
			if err != nil {
				log.Printf("[WARN] event %s line %d: price lookup for session %s: %v, skipping", ev.EventID, i, sessionID, err)
				continue
			}
		} else if l.PriceID != "" {
			sessionID, unitCents, err = p.Store.SessionByStripePrice(ctx, l.PriceID)
			if err != nil {
				log.Printf("[WARN] event %s line %d: no session for price %s, skipping", ev.EventID, i, l.PriceID)
				continue
			}
		} else {
			log.Printf("[WARN] event %s line %d: no session or price reference, skipping", ev.EventID, i)
			continue
		}

		if l.AthleteID == "" {
			log.Printf("[WARN] event %s line %d: no athlete attached, skipping", ev.EventID, i)
			continue
		}
		athleteID, err := uuid.Parse(l.AthleteID)
		if err != nil {
			log.Printf("[WARN] event %s line %d: bad athlete id %q, skipping", ev.EventID, i, l.AthleteID)
			continue
		}

		qty := l.Quantity
		if qty <= 0 {
			qty = 1
		}
		args.SessionIDs = append(args.SessionIDs, sessionID)
		args.AthleteIDs = append(args.AthleteIDs, athleteID)
		args.Quantities = append(args.Quantities, int32(qty))
		args.UnitCents = append(args.UnitCents, unitCents)
	}

	if len(args.SessionIDs) == 0 {
		return nil, ErrNoLinesResolved
	}
	return args, nil
}

// sendConfirmation claims the single email slot and sends best-effort. Any
// failure is logged and swallowed; money has already moved.
func (p *WebhookProcessor) sendConfirmation(ctx context.Context, paymentID, userID uuid.UUID, ev *stripegw.CheckoutEvent) {
	claimed, err := p.Store.ClaimEmail(ctx, paymentID)
	if err != nil {
		log.Printf("[ERROR] claim confirmation email for payment %s: %v", paymentID, err)
		return
	}
	if !claimed {
		return
	}
	mail := ConfirmationEmail{
		PaymentID:   paymentID,
		UserID:      userID,
		AmountCents: ev.AmountCents,
		Currency:    ev.Currency,
		LineCount:   len(ev.Lines),
	}
	if err := p.Mailer.SendConfirmation(ctx, mail); err != nil {
		log.Printf("[WARN] send confirmation email for payment %s: %v", paymentID, err)
	}
}

func (p *WebhookProcessor) markFailed(ctx context.Context, eventID uuid.UUID, cause error) {
	if err := p.Store.MarkFailed(ctx, eventID, cause.Error()); err != nil {
		log.Printf("[ERROR] mark webhook event %s failed: %v", eventID, err)
	}
}
