package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tembeya.com/app/internal/http/handlers"
	"tembeya.com/app/internal/http/middleware"
	"tembeya.com/app/internal/modules/bookings"
	"tembeya.com/app/internal/modules/checkouts"
	"tembeya.com/app/internal/modules/payments"
)

type Deps struct {
	Logger *slog.Logger

	Processor    *payments.Processor
	CheckoutRepo *checkouts.Repo
	CheckoutSvc  *checkouts.Service
	BookingRepo  *bookings.Repo
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.ErrorHandler(d.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	wh := handlers.NewWebhookHandler(d.Logger, d.Processor)
	r.POST("/webhooks/deposits", wh.HandleDeposit)

	api := r.Group("/api")
	{
		ch := handlers.NewCheckoutHandler(d.CheckoutRepo, d.CheckoutSvc)
		api.POST("/checkouts", ch.Create)
		api.GET("/checkouts/:id/status", ch.Status)

		bh := handlers.NewBookingHandler(d.BookingRepo)
		api.GET("/bookings/:id", bh.Get)
		api.POST("/bookings/:id/confirm", bh.Confirm)
	}

	return r
}
