package bookings

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tembeya.com/app/internal/modules/checkouts"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Booking{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func paidCheckout(items ...checkouts.LineItem) checkouts.CheckoutRequest {
	now := time.Now()
	dep := "dep-" + uuid.NewString()
	co := checkouts.CheckoutRequest{
		ID:            uuid.NewString(),
		DepositID:     &dep,
		GuestName:     "Amina Odhiambo",
		GuestEmail:    "amina@example.com",
		GuestPhone:    "+254700000001",
		TotalCents:    25000,
		Currency:      "USD",
		PaymentStatus: checkouts.StatusPaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	co.Metadata = datatypes.NewJSONType(checkouts.Metadata{Items: items})
	return co
}

func cartOfThree() []checkouts.LineItem {
	checkIn := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	tourDate := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)
	return []checkouts.LineItem{
		{Type: checkouts.ItemProperty, RefID: "prop-1", Title: "Diani Cottage", UnitCents: 10000, Currency: "USD", Qty: 1, Nights: 3, CheckIn: &checkIn},
		{Type: checkouts.ItemTour, RefID: "tour-1", Title: "Reef Snorkeling", UnitCents: 5000, Currency: "USD", Qty: 2, Date: &tourDate},
		{Type: checkouts.ItemTransport, RefID: "tr-1", Title: "Airport Shuttle", UnitCents: 2000, Currency: "USD", Qty: 1},
	}
}

func TestMaterialize(t *testing.T) {
	ctx := context.Background()

	t.Run("one booking per line item", func(t *testing.T) {
		repo := NewRepo(newTestDB(t))
		m := NewMaterializer(repo, testLogger())
		co := paidCheckout(cartOfThree()...)

		bks, err := m.Materialize(ctx, co)
		if err != nil {
			t.Fatalf("Materialize failed: %v", err)
		}
		if len(bks) != 3 {
			t.Fatalf("expected 3 bookings, got %d", len(bks))
		}

		byType := map[string]Booking{}
		for _, b := range bks {
			byType[b.BookingType] = b

			if b.OrderID == nil || *b.OrderID != co.ID {
				t.Errorf("booking %s not linked to checkout", b.ID)
			}
			if b.Status != StatusPending {
				t.Errorf("booking %s: expected status pending, got %q", b.ID, b.Status)
			}
			if b.PaymentStatus != checkouts.StatusPaid {
				t.Errorf("booking %s: expected payment status paid, got %q", b.ID, b.PaymentStatus)
			}
			if b.GuestEmail != co.GuestEmail || b.GuestName != co.GuestName {
				t.Errorf("booking %s: guest snapshot not copied", b.ID)
			}
			if len(b.ReviewToken) != 32 {
				t.Errorf("booking %s: expected 32-char review token, got %q", b.ID, b.ReviewToken)
			}
		}

		// property dates come from check-in + nights
		prop := byType[TypeProperty]
		if got := prop.CheckOut.Sub(prop.CheckIn); got != 3*24*time.Hour {
			t.Errorf("expected 3-night stay, got %v", got)
		}
		// tour uses its activity date for both ends
		tour := byType[TypeTour]
		if !tour.CheckIn.Equal(tour.CheckOut) {
			t.Errorf("tour booking should be single-day, got %v - %v", tour.CheckIn, tour.CheckOut)
		}
		// tour line: 2 x 50.00 + 5% fee
		if tour.TotalCents != 10500 {
			t.Errorf("expected tour total 10500, got %d", tour.TotalCents)
		}
	})

	t.Run("rerun creates nothing new", func(t *testing.T) {
		repo := NewRepo(newTestDB(t))
		m := NewMaterializer(repo, testLogger())
		co := paidCheckout(cartOfThree()...)

		first, err := m.Materialize(ctx, co)
		if err != nil {
			t.Fatalf("first run failed: %v", err)
		}

		second, err := m.Materialize(ctx, co)
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}
		if len(second) != len(first) {
			t.Fatalf("expected %d bookings on rerun, got %d", len(first), len(second))
		}

		firstIDs := map[string]bool{}
		for _, b := range first {
			firstIDs[b.ID] = true
		}
		for _, b := range second {
			if !firstIDs[b.ID] {
				t.Errorf("rerun created new booking %s instead of reusing", b.ID)
			}
		}

		all, err := repo.ListByOrderID(ctx, co.ID)
		if err != nil {
			t.Fatalf("ListByOrderID failed: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected exactly 3 bookings in the table, got %d", len(all))
		}
	})

	t.Run("undated items default to today", func(t *testing.T) {
		repo := NewRepo(newTestDB(t))
		m := NewMaterializer(repo, testLogger())
		co := paidCheckout(checkouts.LineItem{
			Type: checkouts.ItemTransport, RefID: "tr-1", UnitCents: 2000, Currency: "USD", Qty: 1,
		})

		bks, err := m.Materialize(ctx, co)
		if err != nil {
			t.Fatalf("Materialize failed: %v", err)
		}
		if len(bks) != 1 {
			t.Fatalf("expected 1 booking, got %d", len(bks))
		}
		if time.Since(bks[0].CheckIn) > 48*time.Hour || bks[0].CheckIn.After(time.Now()) {
			t.Errorf("expected check-in near today, got %v", bks[0].CheckIn)
		}
	})

	t.Run("bad item does not abort the rest", func(t *testing.T) {
		repo := NewRepo(newTestDB(t))
		m := NewMaterializer(repo, testLogger())
		co := paidCheckout(
			checkouts.LineItem{Type: checkouts.ItemTour, RefID: "tour-1", UnitCents: 5000, Currency: "USD", Qty: 1},
			checkouts.LineItem{Type: "spa", RefID: "spa-1", UnitCents: 3000, Currency: "USD", Qty: 1},
			checkouts.LineItem{Type: checkouts.ItemTransport, RefID: "tr-1", UnitCents: 2000, Currency: "USD", Qty: 1},
		)

		bks, err := m.Materialize(ctx, co)
		if err == nil {
			t.Fatal("expected an error for the unknown item type")
		}
		if !strings.Contains(err.Error(), "spa") {
			t.Errorf("error should name the failing item, got %v", err)
		}
		if len(bks) != 2 {
			t.Errorf("expected the 2 valid items booked, got %d", len(bks))
		}
	})
}
