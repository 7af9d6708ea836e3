package checkouts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"tembeya.com/app/internal/modules/currency"
	"tembeya.com/app/internal/modules/pricing"
)

// RateProvider is the read side of the currency store.
type RateProvider interface {
	Snapshot() currency.Rates
}

// Service creates ledger rows for the cart flow. Conversion into the
// settlement currency happens here and is fatal on a missing rate: a ledger
// row with a wrong total is worse than a failed checkout.
type Service struct {
	repo       *Repo
	rates      RateProvider
	settlement string
	logger     *slog.Logger
}

func NewService(repo *Repo, rates RateProvider, settlementCurrency string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		rates:      rates,
		settlement: strings.ToUpper(settlementCurrency),
		logger:     logger,
	}
}

type CreateInput struct {
	DepositID  string
	GuestName  string
	GuestEmail string
	GuestPhone string
	Items      []LineItem
}

func (s *Service) Create(ctx context.Context, in CreateInput) (CheckoutRequest, error) {
	if len(in.Items) == 0 {
		return CheckoutRequest{}, ErrCartEmpty
	}
	if strings.TrimSpace(in.DepositID) == "" {
		return CheckoutRequest{}, ErrMissingDepositID
	}

	rates := s.rates.Snapshot()

	var totalCents int64
	for i, it := range in.Items {
		qty := it.Qty
		if qty < 1 {
			qty = 1
			in.Items[i].Qty = 1
		}
		lineCents := it.UnitCents * int64(qty)

		settled, err := currency.Convert(lineCents, it.Currency, s.settlement, rates)
		if err != nil {
			return CheckoutRequest{}, fmt.Errorf("settle line %s/%s: %w", it.Type, it.RefID, err)
		}

		guestTotal, fee := pricing.GuestTotalCents(settled, pricing.CategoryForItemType(it.Type))
		totalCents += guestTotal

		s.logger.DebugContext(ctx, "checkout line priced",
			"type", it.Type, "ref", it.RefID, "settled_cents", settled, "fee_cents", fee)
	}

	now := time.Now()
	dep := in.DepositID
	c := CheckoutRequest{
		ID:            uuid.NewString(),
		DepositID:     &dep,
		GuestName:     in.GuestName,
		GuestEmail:    in.GuestEmail,
		GuestPhone:    in.GuestPhone,
		TotalCents:    totalCents,
		Currency:      s.settlement,
		PaymentStatus: StatusAwaitingCallback,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	c.Metadata = datatypes.NewJSONType(Metadata{Items: in.Items})

	if err := s.repo.Create(ctx, &c); err != nil {
		return CheckoutRequest{}, err
	}

	s.logger.InfoContext(ctx, "checkout created",
		"checkout_id", c.ID, "deposit_id", in.DepositID, "items", len(in.Items), "total_cents", totalCents)
	return c, nil
}
