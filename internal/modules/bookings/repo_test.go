package bookings

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tembeya.com/app/internal/modules/checkouts"
)

func seedBooking(t *testing.T, repo *Repo) Booking {
	t.Helper()
	now := time.Now()
	orderID := uuid.NewString()
	ref := "prop-1"
	b := Booking{
		ID:            uuid.NewString(),
		OrderID:       &orderID,
		BookingType:   TypeProperty,
		PropertyID:    &ref,
		GuestName:     "Amina Odhiambo",
		GuestEmail:    "amina@example.com",
		CheckIn:       now,
		CheckOut:      now.AddDate(0, 0, 2),
		TotalCents:    11000,
		Currency:      "USD",
		Status:        StatusPending,
		PaymentStatus: checkouts.StatusPaid,
		ReviewToken:   NewReviewToken(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.Create(context.Background(), &b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

func TestRepoConfirm(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()
	b := seedBooking(t, repo)

	if err := repo.Confirm(ctx, b.ID); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	got, err := repo.FindByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %q", got.Status)
	}

	// already confirmed: the pending guard rejects a second confirm
	if err := repo.Confirm(ctx, b.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	if err := repo.Confirm(ctx, uuid.NewString()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for unknown id, got %v", err)
	}
}

func TestRepoRotateReviewToken(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()
	b := seedBooking(t, repo)

	if err := repo.RotateReviewToken(ctx, b.ID, b.ReviewToken); err != nil {
		t.Fatalf("RotateReviewToken failed: %v", err)
	}

	got, err := repo.FindByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.ReviewToken == b.ReviewToken {
		t.Error("token was not rotated")
	}
	if len(got.ReviewToken) != 32 {
		t.Errorf("expected a 32-char replacement token, got %q", got.ReviewToken)
	}

	// the used token is dead: replaying it loses
	if err := repo.RotateReviewToken(ctx, b.ID, b.ReviewToken); !errors.Is(err, ErrTokenMismatch) {
		t.Errorf("expected ErrTokenMismatch, got %v", err)
	}
}

func TestFindForCheckoutItem(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()
	b := seedBooking(t, repo)

	got, found, err := repo.FindForCheckoutItem(ctx, *b.OrderID, TypeProperty, *b.PropertyID)
	if err != nil {
		t.Fatalf("FindForCheckoutItem failed: %v", err)
	}
	if !found {
		t.Fatal("expected the probe to find the booking")
	}
	if got.ID != b.ID {
		t.Errorf("expected booking %s, got %s", b.ID, got.ID)
	}

	_, found, err = repo.FindForCheckoutItem(ctx, *b.OrderID, TypeTour, "tour-1")
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if found {
		t.Error("probe on a different listing must miss")
	}

	if _, _, err := repo.FindForCheckoutItem(ctx, *b.OrderID, "spa", "spa-1"); err == nil {
		t.Error("expected an error for an unknown item type")
	}
}

func TestIsDuplicateKey(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"mysql 1062", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"wrapped mysql 1062", fmt.Errorf("create booking: %w", &mysql.MySQLError{Number: 1062}), true},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, false},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"other error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsDuplicateKey(tc.err); got != tc.want {
				t.Errorf("IsDuplicateKey(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
