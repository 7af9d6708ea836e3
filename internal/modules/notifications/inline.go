package notifications

import (
	"context"

	"tembeya.com/app/internal/modules/bookings"
	"tembeya.com/app/internal/modules/checkouts"
)

// Inline dispatches on the webhook request path. Each send carries its own
// timeout so the acknowledgment never waits on a slow SMTP server.
type Inline struct {
	d *Dispatcher
}

func NewInline(d *Dispatcher) *Inline { return &Inline{d: d} }

func (n *Inline) CheckoutPaid(ctx context.Context, co checkouts.CheckoutRequest, bks []bookings.Booking) {
	n.d.DispatchPaid(ctx, co, bks)
}

func (n *Inline) CheckoutFailed(ctx context.Context, co checkouts.CheckoutRequest) {
	n.d.DispatchFailed(ctx, co)
}
