package receipts

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"tembeya.com/app/internal/modules/bookings"
	"tembeya.com/app/internal/modules/checkouts"
	"tembeya.com/app/internal/storage"
)

// Generator builds the guest receipt document and archives a copy. The
// archive is best-effort: a storage outage never blocks the confirmation
// email that carries the receipt inline.
type Generator struct {
	store  storage.Storage // optional
	logger *slog.Logger
}

func NewGenerator(store storage.Storage, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{store: store, logger: logger}
}

type Receipt struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (g *Generator) Build(co checkouts.CheckoutRequest, bks []bookings.Booking) Receipt {
	var b strings.Builder

	b.WriteString("<html><body style=\"font-family: sans-serif;\">\n")
	b.WriteString("<h2>Tembeya Receipt</h2>\n")
	b.WriteString("<p><strong>Checkout:</strong> #" + html.EscapeString(co.ID) + "</p>\n")
	b.WriteString("<p><strong>Guest:</strong> " + html.EscapeString(co.GuestName) + "</p>\n")
	b.WriteString("<p><strong>Date:</strong> " + time.Now().Format("2006-01-02") + "</p>\n")

	b.WriteString("<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">\n")
	b.WriteString("<tr><th>Booking</th><th>Type</th><th>Dates</th><th>Amount</th></tr>\n")
	for _, bk := range bks {
		b.WriteString("<tr>")
		b.WriteString("<td>" + html.EscapeString(bk.ID) + "</td>")
		b.WriteString("<td>" + html.EscapeString(bk.BookingType) + "</td>")
		b.WriteString("<td>" + bk.CheckIn.Format("2006-01-02") + " &ndash; " + bk.CheckOut.Format("2006-01-02") + "</td>")
		b.WriteString("<td>" + FormatMoney(bk.Currency, bk.TotalCents) + "</td>")
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n")

	b.WriteString("<p><strong>Total paid:</strong> " + FormatMoney(co.Currency, co.TotalCents) + "</p>\n")
	b.WriteString("<p>Thank you for booking with Tembeya!</p>\n")
	b.WriteString("</body></html>\n")

	return Receipt{
		Filename:    "receipt-" + co.ID + ".html",
		ContentType: "text/html",
		Data:        []byte(b.String()),
	}
}

// Archive stores a copy of the receipt. Failures are logged, never returned.
func (g *Generator) Archive(ctx context.Context, r Receipt) {
	if g.store == nil {
		return
	}
	res, err := g.store.Put(ctx, bytes.NewReader(r.Data), storage.PutInput{
		Filename:    r.Filename,
		ContentType: r.ContentType,
		Size:        int64(len(r.Data)),
	})
	if err != nil {
		g.logger.WarnContext(ctx, "receipt archive failed", "filename", r.Filename, "err", err)
		return
	}
	g.logger.InfoContext(ctx, "receipt archived", "filename", r.Filename, "key", res.Key)
}

// FormatMoney renders minor units with a currency symbol where we have one.
func FormatMoney(currency string, cents int64) string {
	major := float64(cents) / 100.0
	switch currency {
	case "USD":
		return fmt.Sprintf("$%.2f", major)
	case "EUR":
		return fmt.Sprintf("€%.2f", major)
	case "KES":
		return fmt.Sprintf("KSh %.2f", major)
	default:
		return fmt.Sprintf("%.2f %s", major, currency)
	}
}
