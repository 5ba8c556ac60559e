package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"ticker-alerts/internal/errors"
)

func TestClientCloseSeries(t *testing.T) {
	var gotTicker string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		gotTicker = req["ticker"]
		// Out of order on purpose; the client must sort by date.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"time": "2026-08-25", "value": 105},
			{"time": "2026-08-24", "value": 100},
			{"time": "not-a-date", "value": 1}
		]`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{ClosingPriceURL: srv.URL, RatioURL: srv.URL})
	series, err := c.CloseSeries(context.Background(), "ACME")
	if err != nil {
		t.Fatal(err)
	}

	if gotTicker != "ACME" {
		t.Errorf("request ticker = %q, want ACME", gotTicker)
	}
	if len(series) != 2 {
		t.Fatalf("series length = %d, want 2 (bad dates skipped)", len(series))
	}
	if !series[0].Date.Before(series[1].Date) {
		t.Error("series not sorted by date")
	}
	if series[0].Value != 100 || series[1].Value != 105 {
		t.Errorf("series values = %v", series)
	}
}

func TestClientEmptySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{ClosingPriceURL: srv.URL})
	_, err := c.CloseSeries(context.Background(), "ACME")
	if !errors.Is(err, errors.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}

	var dataErr *errors.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected a DataError, got %T", err)
	}
	if dataErr.Symbol != "ACME" {
		t.Errorf("DataError symbol = %q", dataErr.Symbol)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"time": "2026-08-25", "value": 105}]`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{ClosingPriceURL: srv.URL, MaxRetries: 3})
	series, err := c.CloseSeries(context.Background(), "ACME")
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 1 {
		t.Fatalf("series length = %d, want 1", len(series))
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}
