package currency

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

type failingSource struct{ err error }

func (f failingSource) Fetch(context.Context) (Rates, error) { return nil, f.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseStatic(t *testing.T) {
	src, err := ParseStatic(`{"EUR": 1.10, "KES": 0.0077}`)
	if err != nil {
		t.Fatalf("ParseStatic failed: %v", err)
	}

	rates, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if rates["EUR"] != 1.10 || rates["KES"] != 0.0077 {
		t.Errorf("unexpected rates %v", rates)
	}

	if _, err := ParseStatic(`not json`); err == nil {
		t.Error("expected a parse error")
	}
}

func TestStoreRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("swaps in the fetched table", func(t *testing.T) {
		s := NewStore(StaticSource{"EUR": 1.10}, nil, testLogger())
		if len(s.Snapshot()) != 0 {
			t.Fatal("expected an empty table before the first refresh")
		}
		if err := s.Refresh(ctx); err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if got := s.Snapshot()["EUR"]; got != 1.10 {
			t.Errorf("expected EUR 1.10, got %v", got)
		}
	})

	t.Run("feed failure without a cache surfaces", func(t *testing.T) {
		feedErr := errors.New("feed down")
		s := NewStore(failingSource{err: feedErr}, nil, testLogger())
		if err := s.Refresh(ctx); !errors.Is(err, feedErr) {
			t.Errorf("expected the feed error, got %v", err)
		}
	})
}

func TestHTTPSource(t *testing.T) {
	t.Run("decodes the rates object", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"rates": {"KES": 0.0077}}`))
		}))
		defer srv.Close()

		rates, err := NewHTTPSource(srv.URL).Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if rates["KES"] != 0.0077 {
			t.Errorf("unexpected rates %v", rates)
		}
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		if _, err := NewHTTPSource(srv.URL).Fetch(context.Background()); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("empty table is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"rates": {}}`))
		}))
		defer srv.Close()

		if _, err := NewHTTPSource(srv.URL).Fetch(context.Background()); err == nil {
			t.Error("expected an error")
		}
	})
}
