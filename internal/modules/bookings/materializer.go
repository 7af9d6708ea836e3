package bookings

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tembeya.com/app/internal/modules/checkouts"
	"tembeya.com/app/internal/modules/pricing"
)

// Materializer expands a paid checkout's line items into bookings, exactly
// one per item across any number of invocations. Items run sequentially; the
// dedup probe sits immediately before each item's insert so a crashed or
// duplicated run only fills the gaps.
type Materializer struct {
	repo   *Repo
	logger *slog.Logger
}

func NewMaterializer(repo *Repo, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{repo: repo, logger: logger}
}

// Materialize returns every booking that exists for the checkout after the
// run (reused and created alike). Per-item failures are joined into err but
// never abort the remaining items; callers log and move on, the next webhook
// retry completes the gaps.
func (m *Materializer) Materialize(ctx context.Context, co checkouts.CheckoutRequest) ([]Booking, error) {
	items := co.Items()
	out := make([]Booking, 0, len(items))
	var errs []error

	for _, it := range items {
		b, err := m.materializeItem(ctx, co, it)
		if err != nil {
			m.logger.ErrorContext(ctx, "booking materialization failed for item",
				"checkout_id", co.ID, "item_type", it.Type, "ref_id", it.RefID, "err", err)
			errs = append(errs, fmt.Errorf("item %s/%s: %w", it.Type, it.RefID, err))
			continue
		}
		out = append(out, b)
	}

	return out, errors.Join(errs...)
}

func (m *Materializer) materializeItem(ctx context.Context, co checkouts.CheckoutRequest, it checkouts.LineItem) (Booking, error) {
	// dedup: reuse the existing booking for this (checkout, listing) pair
	existing, found, err := m.repo.FindForCheckoutItem(ctx, co.ID, it.Type, it.RefID)
	if err != nil {
		return Booking{}, err
	}
	if found {
		m.logger.InfoContext(ctx, "booking already materialized, reusing",
			"checkout_id", co.ID, "booking_id", existing.ID, "ref_id", it.RefID)
		return existing, nil
	}

	checkIn, checkOut := itemDates(it)

	qty := it.Qty
	if qty < 1 {
		qty = 1
	}
	lineTotal, _ := pricing.GuestTotalCents(it.UnitCents*int64(qty), pricing.CategoryForItemType(it.Type))

	now := time.Now()
	orderID := co.ID
	b := Booking{
		ID:            uuid.NewString(),
		OrderID:       &orderID,
		BookingType:   it.Type,
		GuestName:     co.GuestName,
		GuestEmail:    co.GuestEmail,
		GuestPhone:    co.GuestPhone,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		TotalCents:    lineTotal,
		Currency:      it.Currency,
		Status:        StatusPending,
		PaymentStatus: checkouts.StatusPaid,
		ReviewToken:   NewReviewToken(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	ref := it.RefID
	switch it.Type {
	case checkouts.ItemProperty:
		b.PropertyID = &ref
	case checkouts.ItemTour:
		b.TourID = &ref
	case checkouts.ItemTransport:
		b.TransportID = &ref
	default:
		return Booking{}, fmt.Errorf("unknown line item type %q", it.Type)
	}

	if err := m.repo.Create(ctx, &b); err != nil {
		// the unique (order, listing) index caught a concurrent delivery that
		// raced past the probe; its row wins
		if IsDuplicateKey(err) {
			winner, found, ferr := m.repo.FindForCheckoutItem(ctx, co.ID, it.Type, it.RefID)
			if ferr == nil && found {
				m.logger.InfoContext(ctx, "concurrent materialization won the insert, reusing",
					"checkout_id", co.ID, "booking_id", winner.ID, "ref_id", ref)
				return winner, nil
			}
		}
		return Booking{}, err
	}

	m.logger.InfoContext(ctx, "booking materialized",
		"checkout_id", co.ID, "booking_id", b.ID, "type", b.BookingType, "ref_id", ref)
	return b, nil
}

// itemDates resolves the stay window. Undated item types (tours, transport
// without an explicit date) default to today.
func itemDates(it checkouts.LineItem) (time.Time, time.Time) {
	today := time.Now().Truncate(24 * time.Hour)

	switch it.Type {
	case checkouts.ItemProperty:
		in, out := today, today.AddDate(0, 0, 1)
		if it.CheckIn != nil {
			in = *it.CheckIn
		}
		if it.CheckOut != nil {
			out = *it.CheckOut
		} else if it.Nights > 0 {
			out = in.AddDate(0, 0, it.Nights)
		}
		return in, out
	default:
		d := today
		if it.Date != nil {
			d = *it.Date
		}
		return d, d
	}
}

func NewReviewToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()[:32]
	}
	return hex.EncodeToString(b)
}
