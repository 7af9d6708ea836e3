package currency

import (
	"errors"
	"math"
	"strings"
)

// Rates maps a currency code to its USD rate: 1 unit of the code buys
// rates[code] USD. USD itself is implicitly 1.0 but may be listed.
type Rates map[string]float64

var ErrRateUnavailable = errors.New("currency: rate unavailable")

// Convert converts an amount in minor units from one currency to another,
// pivoting through USD. Callers on the settlement money path must treat
// ErrRateUnavailable as fatal; display-only callers may fall back.
func Convert(amountCents int64, from, to string, rates Rates) (int64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return 0, ErrRateUnavailable
	}
	if from == to {
		return amountCents, nil
	}

	rf, err := usdRate(from, rates)
	if err != nil {
		return 0, err
	}
	rt, err := usdRate(to, rates)
	if err != nil {
		return 0, err
	}

	usd := float64(amountCents) * rf
	return int64(math.Round(usd / rt)), nil
}

func usdRate(code string, rates Rates) (float64, error) {
	if code == "USD" {
		return 1.0, nil
	}
	r, ok := rates[code]
	if !ok || r <= 0 {
		return 0, ErrRateUnavailable
	}
	return r, nil
}
