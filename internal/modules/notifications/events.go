package notifications

import (
	"encoding/json"
	"fmt"
)

const (
	RKCheckoutPaid   = "checkout.paid"
	RKCheckoutFailed = "checkout.failed"
)

// CheckoutPaid carries ids only; the consumer reloads current rows so a
// delayed delivery never works from stale data.
type CheckoutPaid struct {
	CheckoutID string   `json:"checkout_id"`
	BookingIDs []string `json:"booking_ids"`
}

type CheckoutFailed struct {
	CheckoutID string `json:"checkout_id"`
}

func decodeEvent[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}
