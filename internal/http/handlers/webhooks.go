package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tembeya.com/app/internal/modules/payments"
)

type WebhookHandler struct {
	Logger    *slog.Logger
	Processor *payments.Processor
}

func NewWebhookHandler(logger *slog.Logger, p *payments.Processor) *WebhookHandler {
	return &WebhookHandler{Logger: logger, Processor: p}
}

// POST /webhooks/deposits
// The gateway delivers at-least-once and retries anything that is not a 200.
// Business-level problems (unknown deposit, duplicate, bad status) must
// therefore ack with 200; only an unparseable body or a failed ledger write
// may answer otherwise.
func (h *WebhookHandler) HandleDeposit(c *gin.Context) {
	var cb payments.DepositCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	out, err := h.Processor.Process(c.Request.Context(), cb)
	if err != nil {
		// payment state not durably recorded => 500 so the gateway retries
		h.Logger.Error("deposit callback processing failed",
			"deposit_id", cb.DepositID, "provider_status", cb.Status, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}

	resp := gin.H{"ok": true, "applied": out.Applied}
	if out.CheckoutID != "" {
		resp["checkoutId"] = out.CheckoutID
	}
	if out.NewStatus != "" {
		resp["status"] = out.NewStatus
	}
	if out.Note != "" {
		resp["note"] = out.Note
	}
	c.JSON(http.StatusOK, resp)
}
