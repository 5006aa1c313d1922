// file: internals/features/commerce/carts/dto/cart_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	cartModel "athletiq_backend/internals/features/commerce/carts/model"
)

type AddCartItemRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	AthleteID string `json:"athlete_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1,max=20"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=20"`
}

type CartItemResponse struct {
	CartItemID  uuid.UUID `json:"cart_item_id"`
	SessionID   uuid.UUID `json:"session_id"`
	SessionName string    `json:"session_name"`
	AthleteID   uuid.UUID `json:"athlete_id"`
	AthleteName string    `json:"athlete_name"`
	Quantity    int       `json:"quantity"`
	UnitCents   int64     `json:"unit_cents"`
	LineCents   int64     `json:"line_cents"`
	AddedAt     time.Time `json:"added_at"`
}

type CartResponse struct {
	Items      []CartItemResponse `json:"items"`
	TotalCents int64              `json:"total_cents"`
	Currency   string             `json:"currency"`
}

// CartItemRow is the join shape the list query scans into.
type CartItemRow struct {
	CartItemID        uuid.UUID
	CartItemSessionID uuid.UUID
	CartItemAthleteID uuid.UUID
	CartItemQuantity  int
	CreatedAt         time.Time
	SessionName       string
	SessionPriceCents int64
	SessionCurrency   string
	AthleteFirstName  string
	AthleteLastName   string
}

func FromRows(rows []CartItemRow) CartResponse {
	resp := CartResponse{Items: make([]CartItemResponse, 0, len(rows)), Currency: "usd"}
	for _, r := range rows {
		line := r.SessionPriceCents * int64(r.CartItemQuantity)
		resp.Items = append(resp.Items, CartItemResponse{
			CartItemID:  r.CartItemID,
			SessionID:   r.CartItemSessionID,
			SessionName: r.SessionName,
			AthleteID:   r.CartItemAthleteID,
			AthleteName: r.AthleteFirstName + " " + r.AthleteLastName,
			Quantity:    r.CartItemQuantity,
			UnitCents:   r.SessionPriceCents,
			LineCents:   line,
			AddedAt:     r.CreatedAt,
		})
		resp.TotalCents += line
		if r.SessionCurrency != "" {
			resp.Currency = r.SessionCurrency
		}
	}
	return resp
}

func (r *AddCartItemRequest) ToModel(userID uuid.UUID) (*cartModel.CartItemModel, error) {
	sessionID, err := uuid.Parse(r.SessionID)
	if err != nil {
		return nil, err
	}
	athleteID, err := uuid.Parse(r.AthleteID)
	if err != nil {
		return nil, err
	}
	qty := r.Quantity
	if qty == 0 {
		qty = 1
	}
	return &cartModel.CartItemModel{
		CartItemUserID:    userID,
		CartItemSessionID: sessionID,
		CartItemAthleteID: athleteID,
		CartItemQuantity:  qty,
	}, nil
}
