package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Source supplies a fresh rate table. Implementations must be safe to call
// repeatedly; the Store decides the refresh cadence.
type Source interface {
	Fetch(ctx context.Context) (Rates, error)
}

// StaticSource returns a fixed table, typically parsed from env at startup.
type StaticSource Rates

func (s StaticSource) Fetch(ctx context.Context) (Rates, error) {
	_ = ctx
	if len(s) == 0 {
		return nil, fmt.Errorf("currency: static rates empty")
	}
	out := make(Rates, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out, nil
}

func ParseStatic(raw string) (StaticSource, error) {
	var m map[string]float64
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("currency: parse RATES_STATIC: %w", err)
	}
	return StaticSource(m), nil
}

// HTTPSource pulls a JSON object {"rates": {"KES": 0.0077, ...}} from a
// rate feed.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) (Rates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}

	res, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("currency: rate feed request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("currency: rate feed status %d", res.StatusCode)
	}

	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("currency: decode rate feed: %w", err)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("currency: rate feed returned no rates")
	}
	return Rates(body.Rates), nil
}
