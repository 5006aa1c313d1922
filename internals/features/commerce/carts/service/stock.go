// file: internals/features/commerce/carts/service/stock.go
package service

// Stock on a training session is a ceiling, not a live counter. Nothing
// decrements it; capacity is derived at cart-add time from what has already
// been paid for plus what is sitting in open carts. Two users racing past the
// ceiling is accepted and resolved manually.

// RemainingCapacity returns how many seats may still be claimed. A ceiling of
// zero or less means unlimited, signalled by a negative return value.
func RemainingCapacity(stock int, purchased, carted int64) int64 {
	if stock <= 0 {
		return -1
	}
	remaining := int64(stock) - purchased - carted
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FitsCapacity reports whether a request for qty additional seats stays under
// the ceiling.
func FitsCapacity(stock int, purchased, carted int64, qty int) bool {
	remaining := RemainingCapacity(stock, purchased, carted)
	if remaining < 0 {
		return true
	}
	return int64(qty) <= remaining
}
