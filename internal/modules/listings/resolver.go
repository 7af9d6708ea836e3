package listings

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrOwnerNotFound = errors.New("listing owner not found")

// Resolver looks up the owning host for a booked listing. Each item type
// resolves through its own table; callers treat any failure here as
// skip-this-notification, never as a booking failure.
type Resolver struct{ db *gorm.DB }

func NewResolver(db *gorm.DB) *Resolver { return &Resolver{db: db} }

func (r *Resolver) ResolveOwner(ctx context.Context, itemType, refID string) (Host, error) {
	var table string
	switch itemType {
	case "property":
		table = "properties"
	case "tour":
		table = "tours"
	case "transport":
		table = "transports"
	default:
		return Host{}, fmt.Errorf("resolve owner: unknown item type %q", itemType)
	}

	var row struct {
		ID    string `gorm:"column:id"`
		Name  string `gorm:"column:name"`
		Email string `gorm:"column:email"`
	}
	err := r.db.WithContext(ctx).
		Table(table).
		Select("host_accounts.id, host_accounts.name, host_accounts.email").
		Joins(fmt.Sprintf("JOIN host_accounts ON host_accounts.id = %s.host_id", table)).
		Where(table+".id = ?", refID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Host{}, ErrOwnerNotFound
	}
	if err != nil {
		return Host{}, err
	}

	return Host{ID: row.ID, Name: row.Name, Email: row.Email}, nil
}
