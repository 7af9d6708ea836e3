package mailer

import (
	"context"
	"sync"
)

type Mock struct {
	mu   sync.Mutex
	Sent []Email
	Err  error

	// FailTo: return Err only for these recipients (any match in To)
	FailTo map[string]bool
}

func (m *Mock) Send(ctx context.Context, e Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.FailTo) > 0 {
		for _, to := range e.To {
			if m.FailTo[to] {
				return m.Err
			}
		}
		m.Sent = append(m.Sent, e)
		return nil
	}

	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, e)
	return nil
}

func (m *Mock) SentTo(addr string) []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Email
	for _, e := range m.Sent {
		for _, to := range e.To {
			if to == addr {
				out = append(out, e)
			}
		}
	}
	return out
}
