package payments

import "tembeya.com/app/internal/modules/checkouts"

// Provider deposit statuses as the mobile-money gateway sends them.
const (
	ProviderSubmitted = "SUBMITTED"
	ProviderAccepted  = "ACCEPTED"
	ProviderCompleted = "COMPLETED"
	ProviderFailed    = "FAILED"
	ProviderRejected  = "REJECTED"
	ProviderCancelled = "CANCELLED"
)

// mapProviderStatus maps a gateway status onto the ledger status. The second
// return is false for statuses we do not recognize; those are logged and
// acknowledged without touching the ledger.
func mapProviderStatus(s string) (string, bool) {
	switch s {
	case ProviderCompleted:
		return checkouts.StatusPaid, true
	case ProviderFailed, ProviderRejected, ProviderCancelled:
		return checkouts.StatusFailed, true
	case ProviderSubmitted, ProviderAccepted:
		return checkouts.StatusPending, true
	default:
		return "", false
	}
}

// transitionAllowed is the reviewed transition table. paid is terminal for
// callbacks: duplicates and regressions alike ack as a no-op, so exactly one
// transition into paid is ever recorded. failed -> paid is permitted
// deliberately (gateways do correct earlier false failures); the processor
// logs it as an anomaly and the audit trail keeps both events.
func transitionAllowed(from, to string) bool {
	return from != checkouts.StatusPaid
}
