// file: internals/features/catalog/sessions/service/catalog_sync.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "athletiq_backend/internals/features/catalog/sessions/model"
	stripegw "athletiq_backend/internals/platform/stripe"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

/* =========================================================
   Ports
========================================================= */

// ProductGateway is the slice of the payment provider the catalog needs.
type ProductGateway interface {
	CreateProductWithPrice(ctx context.Context, in stripegw.ProductInput) (productID, priceID string, err error)
	UpdateProduct(ctx context.Context, productID string, in stripegw.ProductInput) error
	ReplacePrice(ctx context.Context, productID, oldPriceID string, amountCents int64, currency string) (string, error)
	SetProductActive(ctx context.Context, productID string, active bool) error
}

// Store is the catalog's view of the database. GORM-backed in production,
// faked in tests.
type Store interface {
	FindSession(ctx context.Context, id uuid.UUID) (*model.TrainingSessionModel, error)
	InsertSession(ctx context.Context, m *model.TrainingSessionModel) error
	SaveSession(ctx context.Context, m *model.TrainingSessionModel) error
	UpdateSessionActive(ctx context.Context, id uuid.UUID, active bool) error
	ReplaceOccurrences(ctx context.Context, id uuid.UUID, occs []model.SessionOccurrenceModel) error
}

/* =========================================================
   Sync service: keeps local rows and the Stripe product/price
   mirror consistent. Two-phase with compensation, not a real
   distributed transaction.
========================================================= */

type SyncService struct {
	Store   Store
	Gateway ProductGateway
}

func NewSyncService(store Store, gw ProductGateway) *SyncService {
	return &SyncService{Store: store, Gateway: gw}
}

// CreateSession creates the remote product+price pair first, then the local
// row. If the local insert fails, the orphaned remote product is deactivated
// so it can never be sold.
func (s *SyncService) CreateSession(ctx context.Context, m *model.TrainingSessionModel) error {
	m.SessionID = uuid.New()

	productID, priceID, err := s.Gateway.CreateProductWithPrice(ctx, stripegw.ProductInput{
		Name:        m.SessionName,
		Description: m.SessionDescription,
		AmountCents: m.SessionPriceCents,
		Currency:    m.SessionCurrency,
		SessionID:   m.SessionID.String(),
	})
	if err != nil {
		return fmt.Errorf("create remote product: %w", err)
	}
	m.SessionStripeProductID = productID
	m.SessionStripePriceID = priceID

	if err := s.Store.InsertSession(ctx, m); err != nil {
		// compensate: deactivate the orphaned remote product
		if rbErr := s.Gateway.SetProductActive(ctx, productID, false); rbErr != nil {
			log.Printf("[ERROR] session create compensation failed, reconciliation required: product=%s err=%v", productID, rbErr)
		} else {
			log.Printf("[WARN] session create rolled back, remote product %s deactivated", productID)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// UpdateSession pushes remote changes first (product fields, and a fresh
// price when the amount changed), then saves the local row.
func (s *SyncService) UpdateSession(ctx context.Context, m *model.TrainingSessionModel, priceChanged bool) error {
	if err := s.Gateway.UpdateProduct(ctx, m.SessionStripeProductID, stripegw.ProductInput{
		Name:        m.SessionName,
		Description: m.SessionDescription,
		SessionID:   m.SessionID.String(),
	}); err != nil {
		return fmt.Errorf("update remote product: %w", err)
	}

	if priceChanged {
		newPriceID, err := s.Gateway.ReplacePrice(ctx, m.SessionStripeProductID, m.SessionStripePriceID, m.SessionPriceCents, m.SessionCurrency)
		if err != nil {
			return fmt.Errorf("replace remote price: %w", err)
		}
		m.SessionStripePriceID = newPriceID
	}

	if err := s.Store.SaveSession(ctx, m); err != nil {
		log.Printf("[ERROR] session %s saved remotely but local save failed, reconciliation required: %v", m.SessionID, err)
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SetActive toggles the active flag on both sides. Idempotent: when the
// local flag already matches, no remote call is made. Remote goes first;
// a failed local update triggers a best-effort remote rollback.
func (s *SyncService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	m, err := s.Store.FindSession(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if m.SessionIsActive == active {
		return nil
	}

	if err := s.Gateway.SetProductActive(ctx, m.SessionStripeProductID, active); err != nil {
		return fmt.Errorf("toggle remote product: %w", err)
	}

	if err := s.Store.UpdateSessionActive(ctx, id, active); err != nil {
		if rbErr := s.Gateway.SetProductActive(ctx, m.SessionStripeProductID, !active); rbErr != nil {
			log.Printf("[ERROR] toggle compensation failed, stores diverged, reconciliation required: session=%s product=%s want_active=%v rollback_err=%v",
				id, m.SessionStripeProductID, active, rbErr)
		} else {
			log.Printf("[WARN] toggle rolled back: session=%s product=%s restored_active=%v", id, m.SessionStripeProductID, !active)
		}
		return fmt.Errorf("update local active flag: %w", err)
	}
	return nil
}
