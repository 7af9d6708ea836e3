package checkouts

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusPending          = "pending"
	StatusAwaitingCallback = "awaiting_callback"
	StatusPaid             = "paid"
	StatusFailed           = "failed"
)

// Line-item types. Each type carries its own required fields; the booking
// materializer switches over these exhaustively.
const (
	ItemProperty  = "property"
	ItemTour      = "tour"
	ItemTransport = "transport"
)

// LineItem is one cart entry. Type decides which fields are meaningful:
// property items carry CheckIn/CheckOut and Nights, tour and transport items
// carry Date (defaulted to today at materialization when absent).
type LineItem struct {
	Type  string `json:"type"` // property|tour|transport
	RefID string `json:"ref_id"`
	Title string `json:"title"`

	UnitCents int64  `json:"unit_cents"` // price as listed, in Currency
	Currency  string `json:"currency"`
	Qty       int    `json:"qty"`

	Nights   int        `json:"nights,omitempty"`
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
}

// CallbackEvent is one applied webhook delivery, appended to the ledger's
// metadata as an audit trail. Never removed or rewritten.
type CallbackEvent struct {
	ProviderStatus string    `json:"provider_status"`
	Status         string    `json:"status"` // mapped internal status
	FailureReason  string    `json:"failure_reason,omitempty"`
	At             time.Time `json:"at"`
}

type Metadata struct {
	Items  []LineItem      `json:"items"`
	Events []CallbackEvent `json:"events,omitempty"`
}

// CheckoutRequest is the durable record of one payment attempt. Created by
// the cart flow, mutated only by the webhook processor, never deleted.
type CheckoutRequest struct {
	ID        string  `gorm:"type:char(36);primaryKey"`
	DepositID *string `gorm:"type:varchar(128);uniqueIndex:ux_checkout_requests_deposit_id"`

	GuestName  string `gorm:"type:varchar(255)"`
	GuestEmail string `gorm:"type:varchar(255)"`
	GuestPhone string `gorm:"type:varchar(32)"`

	// TotalCents is stored in the canonical settlement currency regardless
	// of what the guest saw at checkout.
	TotalCents int64  `gorm:"not null"`
	Currency   string `gorm:"type:char(3);not null"`

	PaymentStatus string `gorm:"type:varchar(32);not null;index:ix_checkout_requests_status"`

	Metadata datatypes.JSONType[Metadata] `gorm:"type:json"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (CheckoutRequest) TableName() string { return "checkout_requests" }

func (c *CheckoutRequest) Items() []LineItem {
	return c.Metadata.Data().Items
}

func (c *CheckoutRequest) Events() []CallbackEvent {
	return c.Metadata.Data().Events
}
