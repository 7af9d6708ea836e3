package payments

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tembeya.com/app/internal/modules/bookings"
	"tembeya.com/app/internal/modules/checkouts"
)

// DepositCallback is the gateway's webhook payload. Only DepositID is
// required; everything else is best-effort.
type DepositCallback struct {
	DepositID     string     `json:"depositId"`
	Status        string     `json:"status"`
	FailureReason string     `json:"failureReason,omitempty"`
	Created       *time.Time `json:"created,omitempty"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty"`
}

// Outcome is what the handler puts in the acknowledgment body and logs.
type Outcome struct {
	CheckoutID string
	Applied    bool   // the CAS wrote a status
	NewStatus  string // ledger status after processing (when known)
	Note       string // why nothing was applied, for the ack context
}

// Notifier receives the side-effect fan-out after a genuine transition. Both
// implementations (inline dispatch, queue publish) are best-effort and must
// never propagate failure back here.
type Notifier interface {
	CheckoutPaid(ctx context.Context, co checkouts.CheckoutRequest, bks []bookings.Booking)
	CheckoutFailed(ctx context.Context, co checkouts.CheckoutRequest)
}

// Processor turns at-least-once, possibly out-of-order gateway callbacks
// into exactly-one ledger transition plus downstream side effects. The only
// error it returns is a datastore failure on the status path itself; every
// business condition is acknowledged.
type Processor struct {
	ledger       *checkouts.Repo
	materializer *bookings.Materializer
	notifier     Notifier
	logger       *slog.Logger
}

func NewProcessor(ledger *checkouts.Repo, mat *bookings.Materializer, n Notifier, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{ledger: ledger, materializer: mat, notifier: n, logger: logger}
}

func (p *Processor) Process(ctx context.Context, cb DepositCallback) (Outcome, error) {
	if cb.DepositID == "" {
		// malformed, not a business failure; ack so the gateway stops retrying
		p.logger.WarnContext(ctx, "callback without deposit id, ignoring", "provider_status", cb.Status)
		return Outcome{Note: "missing depositId"}, nil
	}

	co, err := p.ledger.FindByDepositID(ctx, cb.DepositID)
	if errors.Is(err, checkouts.ErrNotFound) {
		// checkout may not exist yet, or belongs to another environment
		p.logger.WarnContext(ctx, "callback for unknown deposit id",
			"deposit_id", cb.DepositID, "provider_status", cb.Status)
		return Outcome{Note: "unknown depositId"}, nil
	}
	if err != nil {
		// could not even read the ledger; let the gateway retry
		return Outcome{}, err
	}

	newStatus, recognized := mapProviderStatus(cb.Status)
	if !recognized {
		p.logger.WarnContext(ctx, "unrecognized provider status, no transition",
			"deposit_id", cb.DepositID, "checkout_id", co.ID, "provider_status", cb.Status)
		return Outcome{CheckoutID: co.ID, NewStatus: co.PaymentStatus, Note: "unrecognized status"}, nil
	}

	prevStatus := co.PaymentStatus
	if !transitionAllowed(prevStatus, newStatus) {
		p.logger.InfoContext(ctx, "callback on a paid checkout, idempotent no-op",
			"checkout_id", co.ID, "from", prevStatus, "provider_status", cb.Status)
		return Outcome{CheckoutID: co.ID, NewStatus: prevStatus, Note: "already paid"}, nil
	}
	if prevStatus == checkouts.StatusFailed && newStatus == checkouts.StatusPaid {
		p.logger.WarnContext(ctx, "gateway completed a previously failed deposit, applying recovery",
			"checkout_id", co.ID, "deposit_id", cb.DepositID)
	}

	meta := co.Metadata.Data()
	meta.Events = append(meta.Events, checkouts.CallbackEvent{
		ProviderStatus: cb.Status,
		Status:         newStatus,
		FailureReason:  cb.FailureReason,
		At:             time.Now(),
	})

	applied, err := p.ledger.UpdateStatusIf(ctx, co.ID, prevStatus, newStatus, meta)
	if err != nil {
		// the one class that must surface: payment state not durably recorded
		return Outcome{CheckoutID: co.ID}, err
	}
	if !applied {
		// a concurrent delivery advanced the row first; already processed
		p.logger.InfoContext(ctx, "concurrent callback already applied, skipping",
			"checkout_id", co.ID, "from", prevStatus, "to", newStatus)
		return Outcome{CheckoutID: co.ID, Note: "already processed"}, nil
	}

	out := Outcome{CheckoutID: co.ID, Applied: true, NewStatus: newStatus}
	co.PaymentStatus = newStatus

	// Everything below is downstream of a durable status write: failures are
	// logged and never change the acknowledgment.
	switch {
	case newStatus == checkouts.StatusPaid && prevStatus != checkouts.StatusPaid:
		p.onPaid(ctx, co)
	case newStatus == checkouts.StatusFailed:
		p.onFailed(ctx, co)
	}

	return out, nil
}

func (p *Processor) onPaid(ctx context.Context, co checkouts.CheckoutRequest) {
	bks, err := p.materializer.Materialize(ctx, co)
	if err != nil {
		// partial materialization: the next retried delivery fills the gaps
		p.logger.ErrorContext(ctx, "materialization incomplete",
			"checkout_id", co.ID, "created", len(bks), "err", err)
	}
	if p.notifier != nil {
		p.notifier.CheckoutPaid(ctx, co, bks)
	}
}

func (p *Processor) onFailed(ctx context.Context, co checkouts.CheckoutRequest) {
	if p.notifier != nil {
		p.notifier.CheckoutFailed(ctx, co)
	}
}
