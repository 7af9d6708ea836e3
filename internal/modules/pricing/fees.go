package pricing

// Platform fee structure per service category, in basis points of the base
// amount. The guest-facing total is base + fee; hosts are paid the base.
type Category string

const (
	CategoryAccommodation Category = "accommodation"
	CategoryTour          Category = "tour"
	CategoryTransport     Category = "transport"
)

const (
	accommodationFeeBps = 1000 // 10%
	tourFeeBps          = 500  // 5%
	transportFeeBps     = 500  // 5%
)

func feeBps(cat Category) int64 {
	switch cat {
	case CategoryAccommodation:
		return accommodationFeeBps
	case CategoryTour:
		return tourFeeBps
	case CategoryTransport:
		return transportFeeBps
	default:
		return 0
	}
}

// PlatformFeeCents returns the platform fee for a base amount in minor units,
// rounded half up.
func PlatformFeeCents(baseCents int64, cat Category) int64 {
	bps := feeBps(cat)
	return (baseCents*bps + 5000) / 10000
}

// GuestTotalCents returns the guest-facing total and the fee component.
func GuestTotalCents(baseCents int64, cat Category) (total, fee int64) {
	fee = PlatformFeeCents(baseCents, cat)
	return baseCents + fee, fee
}

// CategoryForItemType maps a checkout line-item type to its fee category.
// Unknown types get a zero fee rather than an error; fee policy must never
// block a checkout.
func CategoryForItemType(itemType string) Category {
	switch itemType {
	case "property":
		return CategoryAccommodation
	case "tour":
		return CategoryTour
	case "transport":
		return CategoryTransport
	default:
		return Category("")
	}
}
