package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tembeya.com/app/internal/mailer"
	"tembeya.com/app/internal/modules/bookings"
	"tembeya.com/app/internal/modules/checkouts"
	"tembeya.com/app/internal/modules/listings"
	"tembeya.com/app/internal/modules/receipts"
)

// HostResolver resolves the owning host for a booked listing.
type HostResolver interface {
	ResolveOwner(ctx context.Context, itemType, refID string) (listings.Host, error)
}

var errNoGuestEmail = errors.New("checkout has no guest email")

// SendOutcome is the explicit result of one notification attempt. Nothing is
// fire-and-forget: every attempt lands in the report with enough context for
// a manual backfill.
type SendOutcome struct {
	Kind      string // guest_confirmation|guest_failure|host_notice
	Recipient string
	BookingID string
	Err       error
}

type Report struct {
	CheckoutID string
	Outcomes   []SendOutcome
}

func (r Report) Failed() []SendOutcome {
	var out []SendOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Dispatcher fans out guest and host emails after a ledger transition.
// Strictly best-effort: any single failure is isolated to its own outcome
// and the loop moves to the next recipient.
type Dispatcher struct {
	mail     mailer.Service
	hosts    HostResolver
	receipts *receipts.Generator

	fromAddr    string
	fromName    string
	baseURL     string
	sendTimeout time.Duration

	logger *slog.Logger
}

func NewDispatcher(mail mailer.Service, hosts HostResolver, gen *receipts.Generator, fromAddr, fromName, baseURL string, sendTimeout time.Duration, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if sendTimeout <= 0 {
		sendTimeout = 5 * time.Second
	}
	return &Dispatcher{
		mail:        mail,
		hosts:       hosts,
		receipts:    gen,
		fromAddr:    fromAddr,
		fromName:    fromName,
		baseURL:     baseURL,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// DispatchPaid sends one guest confirmation per checkout (receipt attached,
// one review link per booking) and one notice per host whose listing was
// booked.
func (d *Dispatcher) DispatchPaid(ctx context.Context, co checkouts.CheckoutRequest, bks []bookings.Booking) Report {
	rep := Report{CheckoutID: co.ID}

	rep.Outcomes = append(rep.Outcomes, d.sendGuestConfirmation(ctx, co, bks))

	for _, bk := range bks {
		rep.Outcomes = append(rep.Outcomes, d.sendHostNotice(ctx, co, bk))
	}

	d.logReport(ctx, rep)
	return rep
}

// DispatchFailed sends the guest a payment-failure notice.
func (d *Dispatcher) DispatchFailed(ctx context.Context, co checkouts.CheckoutRequest) Report {
	rep := Report{CheckoutID: co.ID}

	if co.GuestEmail == "" {
		rep.Outcomes = append(rep.Outcomes, SendOutcome{Kind: "guest_failure", Err: errNoGuestEmail})
		d.logReport(ctx, rep)
		return rep
	}

	subject, htmlBody, textBody := buildFailureNotice(co)
	err := d.send(ctx, mailer.Email{
		From:     d.fromAddr,
		FromName: d.fromName,
		To:       []string{co.GuestEmail},
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	rep.Outcomes = append(rep.Outcomes, SendOutcome{Kind: "guest_failure", Recipient: co.GuestEmail, Err: err})

	d.logReport(ctx, rep)
	return rep
}

func (d *Dispatcher) sendGuestConfirmation(ctx context.Context, co checkouts.CheckoutRequest, bks []bookings.Booking) SendOutcome {
	out := SendOutcome{Kind: "guest_confirmation", Recipient: co.GuestEmail}
	if co.GuestEmail == "" {
		out.Err = errNoGuestEmail
		return out
	}

	var attachments []mailer.Attachment
	if d.receipts != nil {
		rc := d.receipts.Build(co, bks)
		d.receipts.Archive(ctx, rc)
		attachments = append(attachments, mailer.Attachment{
			Filename:    rc.Filename,
			ContentType: rc.ContentType,
			Data:        rc.Data,
		})
	}

	subject, htmlBody, textBody := buildGuestConfirmation(co, bks, d.baseURL)
	out.Err = d.send(ctx, mailer.Email{
		From:        d.fromAddr,
		FromName:    d.fromName,
		To:          []string{co.GuestEmail},
		Subject:     subject,
		HTMLBody:    htmlBody,
		TextBody:    textBody,
		Attachments: attachments,
	})
	return out
}

func (d *Dispatcher) sendHostNotice(ctx context.Context, co checkouts.CheckoutRequest, bk bookings.Booking) SendOutcome {
	out := SendOutcome{Kind: "host_notice", BookingID: bk.ID}

	host, err := d.hosts.ResolveOwner(ctx, bk.BookingType, bk.ListingRef())
	if err != nil {
		// missing host identity skips only this notification
		out.Err = err
		return out
	}
	if host.Email == "" {
		out.Err = errors.New("host has no email")
		return out
	}
	out.Recipient = host.Email

	subject, htmlBody, textBody := buildHostNotice(co, bk, host)
	out.Err = d.send(ctx, mailer.Email{
		From:     d.fromAddr,
		FromName: d.fromName,
		To:       []string{host.Email},
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	return out
}

// send wraps one delivery in its own timeout, shorter than the request
// deadline. A timeout is a skip, not a crash.
func (d *Dispatcher) send(ctx context.Context, e mailer.Email) error {
	sctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	return d.mail.Send(sctx, e)
}

func (d *Dispatcher) logReport(ctx context.Context, rep Report) {
	for _, o := range rep.Outcomes {
		if o.Err != nil {
			d.logger.WarnContext(ctx, "notification skipped or failed",
				"checkout_id", rep.CheckoutID, "kind", o.Kind, "booking_id", o.BookingID,
				"recipient", o.Recipient, "err", o.Err)
			continue
		}
		d.logger.InfoContext(ctx, "notification sent",
			"checkout_id", rep.CheckoutID, "kind", o.Kind, "booking_id", o.BookingID,
			"recipient", o.Recipient)
	}
}
