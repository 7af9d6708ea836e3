package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tembeya.com/app/internal/http/middleware"
	"tembeya.com/app/internal/modules/bookings"
	"tembeya.com/app/internal/shared/apperr"
)

type BookingHandler struct {
	Repo *bookings.Repo
}

func NewBookingHandler(repo *bookings.Repo) *BookingHandler {
	return &BookingHandler{Repo: repo}
}

// POST /api/bookings/:id/confirm
// Host-side confirmation; bookings never auto-confirm on payment.
func (h *BookingHandler) Confirm(c *gin.Context) {
	id := c.Param("id")

	err := h.Repo.Confirm(c.Request.Context(), id)
	switch {
	case errors.Is(err, bookings.ErrInvalidTransition):
		middleware.Fail(c, apperr.ConflictErr("Booking is not pending confirmation."))
		return
	case err != nil:
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "status": bookings.StatusConfirmed})
}

// GET /api/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.Repo.FindByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, bookings.ErrNotFound) {
		middleware.Fail(c, apperr.NotFoundErr("Booking not found."))
		return
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             b.ID,
		"order_id":       b.OrderID,
		"booking_type":   b.BookingType,
		"status":         b.Status,
		"payment_status": b.PaymentStatus,
		"check_in":       b.CheckIn,
		"check_out":      b.CheckOut,
		"total_cents":    b.TotalCents,
		"currency":       b.Currency,
	})
}
