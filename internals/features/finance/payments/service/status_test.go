package service

import (
	"testing"
	"time"

	"athletiq_backend/internals/features/finance/payments/model"
)

func lines(refunded ...bool) []model.PaymentAthleteModel {
	now := time.Now()
	out := make([]model.PaymentAthleteModel, 0, len(refunded))
	for _, r := range refunded {
		l := model.PaymentAthleteModel{}
		if r {
			l.PaymentAthleteRefundedAt = &now
		}
		out = append(out, l)
	}
	return out
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name  string
		base  string
		lines []model.PaymentAthleteModel
		want  string
	}{
		{"no refunds keeps base", model.PaymentStatusSucceeded, lines(false, false), model.PaymentStatusSucceeded},
		{"cash base preserved", model.PaymentStatusCash, lines(false), model.PaymentStatusCash},
		{"one of two refunded", model.PaymentStatusSucceeded, lines(true, false), model.PaymentStatusPartialRefund},
		{"all refunded", model.PaymentStatusSucceeded, lines(true, true, true), model.PaymentStatusRefunded},
		{"single line refunded", model.PaymentStatusCash, lines(true), model.PaymentStatusRefunded},
		{"no lines keeps base", model.PaymentStatusSucceeded, nil, model.PaymentStatusSucceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveStatus(tc.base, tc.lines); got != tc.want {
				t.Errorf("DeriveStatus(%q, ...) = %q, want %q", tc.base, got, tc.want)
			}
		})
	}
}

func TestBaseStatus(t *testing.T) {
	card := &model.PaymentModel{
		PaymentStatus:                model.PaymentStatusPartialRefund,
		PaymentStripePaymentIntentID: "pi_123",
	}
	if got := BaseStatus(card); got != model.PaymentStatusSucceeded {
		t.Errorf("card payment base = %q, want succeeded", got)
	}

	cash := &model.PaymentModel{PaymentStatus: model.PaymentStatusCash}
	if got := BaseStatus(cash); got != model.PaymentStatusCash {
		t.Errorf("cash payment base = %q, want cash", got)
	}
}
