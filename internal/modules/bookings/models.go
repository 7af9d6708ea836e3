package bookings

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	TypeProperty  = "property"
	TypeTour      = "tour"
	TypeTransport = "transport"
)

// Booking is one reservation against one listing, materialized from a paid
// checkout. Guest fields are a point-in-time snapshot of the ledger; later
// profile edits do not touch past bookings.
//
// Exactly one of PropertyID/TourID/TransportID is set, per BookingType. The
// composite unique indexes with OrderID enforce at most one booking per
// (checkout, listing) pair even when materialization runs twice.
type Booking struct {
	ID      string  `gorm:"type:char(36);primaryKey"`
	OrderID *string `gorm:"type:char(36);index:ix_bookings_order_id;uniqueIndex:ux_bookings_order_property,priority:1;uniqueIndex:ux_bookings_order_tour,priority:1;uniqueIndex:ux_bookings_order_transport,priority:1"`

	BookingType string  `gorm:"type:varchar(16);not null"`
	PropertyID  *string `gorm:"type:char(36);uniqueIndex:ux_bookings_order_property,priority:2"`
	TourID      *string `gorm:"type:char(36);uniqueIndex:ux_bookings_order_tour,priority:2"`
	TransportID *string `gorm:"type:char(36);uniqueIndex:ux_bookings_order_transport,priority:2"`

	GuestName  string `gorm:"type:varchar(255)"`
	GuestEmail string `gorm:"type:varchar(255)"`
	GuestPhone string `gorm:"type:varchar(32)"`

	CheckIn  time.Time `gorm:"type:datetime(3);not null"`
	CheckOut time.Time `gorm:"type:datetime(3);not null"`

	TotalCents int64  `gorm:"not null"`
	Currency   string `gorm:"type:char(3);not null"`

	Status        string `gorm:"type:varchar(32);not null"` // hosts confirm explicitly; never auto-confirmed
	PaymentStatus string `gorm:"type:varchar(32);not null"`

	// ReviewToken is single-use: rotated the moment a review is submitted.
	ReviewToken string `gorm:"type:char(32);not null"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Booking) TableName() string { return "bookings" }

// ListingRef returns the reference id for whichever listing column is set.
func (b *Booking) ListingRef() string {
	switch b.BookingType {
	case TypeProperty:
		if b.PropertyID != nil {
			return *b.PropertyID
		}
	case TypeTour:
		if b.TourID != nil {
			return *b.TourID
		}
	case TypeTransport:
		if b.TransportID != nil {
			return *b.TransportID
		}
	}
	return ""
}
