package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Create(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Booking{}, ErrNotFound
	}
	return b, err
}

func (r *Repo) ListByOrderID(ctx context.Context, orderID string) ([]Booking, error) {
	var out []Booking
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&out, "order_id = ?", orderID).Error
	return out, err
}

// FindForCheckoutItem is the materializer's dedup probe: is there already a
// booking for this (checkout, listing) pair on the item's own discriminator
// column?
func (r *Repo) FindForCheckoutItem(ctx context.Context, orderID, itemType, refID string) (Booking, bool, error) {
	col, err := refColumn(itemType)
	if err != nil {
		return Booking{}, false, err
	}

	var b Booking
	e := r.db.WithContext(ctx).
		First(&b, fmt.Sprintf("order_id = ? AND %s = ?", col), orderID, refID).Error
	if errors.Is(e, gorm.ErrRecordNotFound) {
		return Booking{}, false, nil
	}
	if e != nil {
		return Booking{}, false, e
	}
	return b, true, nil
}

// Confirm moves a pending booking to confirmed under an optimistic guard.
// Hosts confirm explicitly; a booking that is no longer pending is rejected.
func (r *Repo) Confirm(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":     StatusConfirmed,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// RotateReviewToken invalidates a review token the moment it is used. The
// guard on the old token makes the rotation single-winner under concurrent
// submissions.
func (r *Repo) RotateReviewToken(ctx context.Context, id, usedToken string) error {
	res := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND review_token = ?", id, usedToken).
		Updates(map[string]any{
			"review_token": NewReviewToken(),
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTokenMismatch
	}
	return nil
}

func refColumn(itemType string) (string, error) {
	switch itemType {
	case TypeProperty:
		return "property_id", nil
	case TypeTour:
		return "tour_id", nil
	case TypeTransport:
		return "transport_id", nil
	default:
		return "", fmt.Errorf("unknown booking type %q", itemType)
	}
}
