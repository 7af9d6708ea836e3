package notifications

import (
	"html"
	"strings"

	"tembeya.com/app/internal/modules/bookings"
	"tembeya.com/app/internal/modules/checkouts"
	"tembeya.com/app/internal/modules/listings"
	"tembeya.com/app/internal/modules/receipts"
)

func buildGuestConfirmation(co checkouts.CheckoutRequest, bks []bookings.Booking, baseURL string) (subject, htmlBody, textBody string) {
	subject = "Booking Confirmed - Tembeya"

	var t strings.Builder
	t.WriteString("Hello " + co.GuestName + ",\n\n")
	t.WriteString("Your payment was received and your bookings are confirmed with the hosts pending their approval.\n")
	t.WriteString("Checkout: #" + co.ID + "\n")
	t.WriteString("Total: " + receipts.FormatMoney(co.Currency, co.TotalCents) + "\n\n")
	for _, bk := range bks {
		t.WriteString("- " + bk.BookingType + " booking " + bk.ID + " (" + bk.CheckIn.Format("2006-01-02") + ")\n")
		t.WriteString("  Review link: " + reviewLink(baseURL, bk) + "\n")
	}
	t.WriteString("\nThank you for travelling with Tembeya!")
	textBody = t.String()

	var b strings.Builder
	b.WriteString(`
<html>
  <body style="font-family: sans-serif;">
    <h2>Booking Confirmed</h2>
    <p>Hello ` + html.EscapeString(co.GuestName) + `,</p>
    <p>Your payment was received. Your bookings are listed below; each host will confirm shortly.</p>
    <p><strong>Checkout:</strong> #` + html.EscapeString(co.ID) + `</p>
    <p><strong>Total:</strong> ` + receipts.FormatMoney(co.Currency, co.TotalCents) + `</p>
    <ul>
`)
	for _, bk := range bks {
		b.WriteString("      <li>" + html.EscapeString(bk.BookingType) + " booking <strong>" + html.EscapeString(bk.ID) + "</strong> (" + bk.CheckIn.Format("2006-01-02") + ") &mdash; <a href=\"" + reviewLink(baseURL, bk) + "\">leave a review</a></li>\n")
	}
	b.WriteString(`    </ul>
    <p>Your receipt is attached.</p>
    <p>Thank you for travelling with Tembeya!</p>
    <p>The Tembeya Team</p>
  </body>
</html>
`)
	htmlBody = b.String()
	return subject, htmlBody, textBody
}

func buildHostNotice(co checkouts.CheckoutRequest, bk bookings.Booking, host listings.Host) (subject, htmlBody, textBody string) {
	subject = "New Booking - Tembeya"

	textBody = "Hello " + host.Name + ",\n\n" +
		"You have a new paid " + bk.BookingType + " booking (" + bk.ID + ") from " + co.GuestName + ".\n" +
		"Dates: " + bk.CheckIn.Format("2006-01-02") + " - " + bk.CheckOut.Format("2006-01-02") + "\n" +
		"Amount: " + receipts.FormatMoney(bk.Currency, bk.TotalCents) + "\n\n" +
		"Please confirm the booking in your dashboard."

	htmlBody = `
<html>
  <body style="font-family: sans-serif;">
    <h2>New Booking</h2>
    <p>Hello ` + html.EscapeString(host.Name) + `,</p>
    <p>You have a new paid ` + html.EscapeString(bk.BookingType) + ` booking from ` + html.EscapeString(co.GuestName) + `.</p>
    <p><strong>Booking:</strong> ` + html.EscapeString(bk.ID) + `</p>
    <p><strong>Dates:</strong> ` + bk.CheckIn.Format("2006-01-02") + ` &ndash; ` + bk.CheckOut.Format("2006-01-02") + `</p>
    <p><strong>Amount:</strong> ` + receipts.FormatMoney(bk.Currency, bk.TotalCents) + `</p>
    <p>Please confirm the booking in your dashboard.</p>
    <p>The Tembeya Team</p>
  </body>
</html>
`
	return subject, htmlBody, textBody
}

func buildFailureNotice(co checkouts.CheckoutRequest) (subject, htmlBody, textBody string) {
	subject = "Payment Unsuccessful - Tembeya"

	textBody = "Hello " + co.GuestName + ",\n\n" +
		"Unfortunately your payment for checkout #" + co.ID + " did not go through.\n" +
		"No bookings were made and nothing was charged. You can retry the checkout at any time."

	htmlBody = `
<html>
  <body style="font-family: sans-serif;">
    <h2>Payment Unsuccessful</h2>
    <p>Hello ` + html.EscapeString(co.GuestName) + `,</p>
    <p>Unfortunately your payment for checkout <strong>#` + html.EscapeString(co.ID) + `</strong> did not go through.</p>
    <p>No bookings were made and nothing was charged. You can retry the checkout at any time.</p>
    <p>The Tembeya Team</p>
  </body>
</html>
`
	return subject, htmlBody, textBody
}

func reviewLink(baseURL string, bk bookings.Booking) string {
	return strings.TrimRight(baseURL, "/") + "/reviews/new?booking=" + bk.ID + "&token=" + bk.ReviewToken
}
