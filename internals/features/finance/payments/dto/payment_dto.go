// file: internals/features/finance/payments/dto/payment_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"athletiq_backend/internals/features/finance/payments/model"
)

type RefundRequest struct {
	LineIDs []string `json:"line_ids" validate:"required,min=1,dive,uuid"`
}

func (r *RefundRequest) ParseLineIDs() ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(r.LineIDs))
	for _, raw := range r.LineIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

type CashRegistrationRequest struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	SessionID string `json:"session_id" validate:"required,uuid"`
	AthleteID string `json:"athlete_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1,max=20"`
}

type PaymentLineResponse struct {
	LineID     uuid.UUID  `json:"line_id"`
	SessionID  uuid.UUID  `json:"session_id"`
	AthleteID  uuid.UUID  `json:"athlete_id"`
	Quantity   int        `json:"quantity"`
	UnitCents  int64      `json:"unit_cents"`
	LineCents  int64      `json:"line_cents"`
	RefundedAt *time.Time `json:"refunded_at,omitempty"`
}

type PaymentResponse struct {
	PaymentID   uuid.UUID             `json:"payment_id"`
	UserID      uuid.UUID             `json:"user_id"`
	Status      string                `json:"status"`
	AmountCents int64                 `json:"amount_cents"`
	Currency    string                `json:"currency"`
	CreatedAt   time.Time             `json:"created_at"`
	Lines       []PaymentLineResponse `json:"lines"`
}

func FromPaymentModel(p *model.PaymentModel) PaymentResponse {
	resp := PaymentResponse{
		PaymentID:   p.PaymentID,
		UserID:      p.PaymentUserID,
		Status:      p.PaymentStatus,
		AmountCents: p.PaymentAmountCents,
		Currency:    p.PaymentCurrency,
		CreatedAt:   p.CreatedAt,
		Lines:       make([]PaymentLineResponse, 0, len(p.Lines)),
	}
	for _, l := range p.Lines {
		resp.Lines = append(resp.Lines, PaymentLineResponse{
			LineID:     l.PaymentAthleteID,
			SessionID:  l.PaymentAthleteSessionID,
			AthleteID:  l.PaymentAthleteAthleteID,
			Quantity:   l.PaymentAthleteQuantity,
			UnitCents:  l.PaymentAthleteUnitCents,
			LineCents:  l.LineCents(),
			RefundedAt: l.PaymentAthleteRefundedAt,
		})
	}
	return resp
}

func FromPaymentModels(ps []model.PaymentModel) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(ps))
	for i := range ps {
		out = append(out, FromPaymentModel(&ps[i]))
	}
	return out
}
