package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tembeya.com/app/internal/http/middleware"
	"tembeya.com/app/internal/http/validation"
	"tembeya.com/app/internal/modules/checkouts"
	"tembeya.com/app/internal/modules/currency"
	"tembeya.com/app/internal/shared/apperr"
)

type CheckoutHandler struct {
	Repo    *checkouts.Repo
	Service *checkouts.Service
}

func NewCheckoutHandler(repo *checkouts.Repo, svc *checkouts.Service) *CheckoutHandler {
	return &CheckoutHandler{Repo: repo, Service: svc}
}

type lineItemInput struct {
	Type      string     `json:"type" binding:"required,oneof=property tour transport"`
	RefID     string     `json:"ref_id" binding:"required,max=64"`
	Title     string     `json:"title" binding:"omitempty,max=255"`
	UnitCents int64      `json:"unit_cents" binding:"required,gt=0"`
	Currency  string     `json:"currency" binding:"required,len=3"`
	Qty       int        `json:"qty" binding:"omitempty,min=1,max=50"`
	Nights    int        `json:"nights" binding:"omitempty,min=1,max=365"`
	CheckIn   *time.Time `json:"check_in"`
	CheckOut  *time.Time `json:"check_out"`
	Date      *time.Time `json:"date"`
}

type createCheckoutInput struct {
	DepositID  string          `json:"deposit_id" binding:"required,max=128"`
	GuestName  string          `json:"guest_name" binding:"omitempty,max=255"`
	GuestEmail string          `json:"guest_email" binding:"omitempty,email,max=255"`
	GuestPhone string          `json:"guest_phone" binding:"omitempty,max=32"`
	Items      []lineItemInput `json:"items" binding:"required,min=1,max=20,dive"`
}

// POST /api/checkouts
// Called by the cart flow once the gateway has issued a deposit id.
func (h *CheckoutHandler) Create(c *gin.Context) {
	var in createCheckoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Invalid checkout payload.", fields))
		return
	}

	items := make([]checkouts.LineItem, len(in.Items))
	for i, it := range in.Items {
		items[i] = checkouts.LineItem{
			Type:      it.Type,
			RefID:     it.RefID,
			Title:     it.Title,
			UnitCents: it.UnitCents,
			Currency:  it.Currency,
			Qty:       it.Qty,
			Nights:    it.Nights,
			CheckIn:   it.CheckIn,
			CheckOut:  it.CheckOut,
			Date:      it.Date,
		}
	}

	co, err := h.Service.Create(c.Request.Context(), checkouts.CreateInput{
		DepositID:  in.DepositID,
		GuestName:  in.GuestName,
		GuestEmail: in.GuestEmail,
		GuestPhone: in.GuestPhone,
		Items:      items,
	})
	switch {
	case errors.Is(err, currency.ErrRateUnavailable):
		// settlement conversion is the critical money path; refuse checkout
		middleware.Fail(c, apperr.ConflictErr("Pricing is temporarily unavailable for this currency."))
		return
	case errors.Is(err, checkouts.ErrCartEmpty), errors.Is(err, checkouts.ErrMissingDepositID):
		middleware.Fail(c, apperr.InvalidErr("Invalid checkout payload.", nil))
		return
	case err != nil:
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":             co.ID,
		"payment_status": co.PaymentStatus,
		"total_cents":    co.TotalCents,
		"currency":       co.Currency,
	})
}

// GET /api/checkouts/:id/status
// The UI polls this; webhook responses are never exposed to the browser.
func (h *CheckoutHandler) Status(c *gin.Context) {
	co, err := h.Repo.FindByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, checkouts.ErrNotFound) {
		middleware.Fail(c, apperr.NotFoundErr("Checkout not found."))
		return
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             co.ID,
		"payment_status": co.PaymentStatus,
		"updated_at":     co.UpdatedAt,
	})
}
