// file: internals/features/finance/payments/service/status.go
package service

import (
	"athletiq_backend/internals/features/finance/payments/model"
)

// BaseStatus returns the status a payment falls back to when none of its
// lines are refunded. Cash registrations never have a payment intent.
func BaseStatus(p *model.PaymentModel) string {
	if p.PaymentStripePaymentIntentID == "" && p.PaymentStatus != model.PaymentStatusFailed {
		return model.PaymentStatusCash
	}
	return model.PaymentStatusSucceeded
}

// DeriveStatus computes a payment's status purely from its lines: refunded
// when every line is refunded, partial_refund when some are, otherwise the
// base status.
func DeriveStatus(base string, lines []model.PaymentAthleteModel) string {
	if len(lines) == 0 {
		return base
	}
	refunded := 0
	for _, l := range lines {
		if l.Refunded() {
			refunded++
		}
	}
	switch {
	case refunded == len(lines):
		return model.PaymentStatusRefunded
	case refunded > 0:
		return model.PaymentStatusPartialRefund
	default:
		return base
	}
}
