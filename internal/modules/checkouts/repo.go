package checkouts

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// DB returns the underlying database connection for direct queries.
func (r *Repo) DB() *gorm.DB { return r.db }

func (r *Repo) Create(ctx context.Context, c *CheckoutRequest) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (CheckoutRequest, error) {
	var c CheckoutRequest
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CheckoutRequest{}, ErrNotFound
	}
	return c, err
}

// FindByDepositID resolves the ledger row for a gateway callback. The deposit
// id is the only correlation key the provider gives us.
func (r *Repo) FindByDepositID(ctx context.Context, depositID string) (CheckoutRequest, error) {
	var c CheckoutRequest
	err := r.db.WithContext(ctx).First(&c, "deposit_id = ?", depositID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CheckoutRequest{}, ErrNotFound
	}
	return c, err
}

// UpdateStatusIf applies the status write only while the row still holds
// fromStatus (optimistic guard, same shape as an order-status transition).
// Zero rows affected means a concurrent callback won the race; callers treat
// that as already-processed, not as an error. The metadata blob (with the
// appended audit event) rides along under the same guard.
func (r *Repo) UpdateStatusIf(ctx context.Context, id, fromStatus, toStatus string, meta Metadata) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&CheckoutRequest{}).
		Where("id = ? AND payment_status = ?", id, fromStatus).
		Updates(map[string]any{
			"payment_status": toStatus,
			"metadata":       datatypes.NewJSONType(meta),
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
