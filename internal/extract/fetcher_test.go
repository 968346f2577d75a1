package extract

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"gcpt/internal/config"
)

func testFetcher(maxAttempts int) *Fetcher {
	return NewFetcherWithConfig(&config.RetryPolicy{
		MaxAttempts:       maxAttempts,
		InitialDelayMs:    1,
		MaxDelayMs:        5,
		BackoffMultiplier: 2.0,
		TimeoutSec:        5,
	}, 10240)
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != userAgent {
			t.Errorf("User-Agent = %q", ua)
		}

		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	body, err := testFetcher(1).Fetch(server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if body != `{"ok":true}` {
		t.Errorf("body = %q", body)
	}
}

func TestFetch_RetriesOnRetryableStatus(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, err := testFetcher(3).Fetch(server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if body != "ok" {
		t.Errorf("body = %q, want ok", body)
	}

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestFetch_404NotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testFetcher(3).Fetch(server.URL)
	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Fatalf("Fetch error = %v, want ErrUnexpectedStatusCode", err)
	}

	// 404 is still re-attempted up to the cap, just without backoff.
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestFetchBytesWithMetrics_StatusCodeReported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, status, _, err := testFetcher(1).FetchBytesWithMetrics(server.URL)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}

	if status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", status)
	}
}

func TestFetchBytes_LimitsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 8*1024))
	}))
	defer server.Close()

	fetcher := NewFetcherWithConfig(&config.RetryPolicy{
		MaxAttempts: 1, TimeoutSec: 5,
	}, 4) // 4 KB cap

	body, err := fetcher.FetchBytes(server.URL)
	if err != nil {
		t.Fatalf("FetchBytes returned error: %v", err)
	}

	if len(body) != 4*1024 {
		t.Errorf("body length = %d, want 4096", len(body))
	}
}

func TestNewFetcher_Defaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, err := NewFetcher().Fetch(server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if body != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
}

func TestIsRetryableStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusRequestTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusGatewayTimeout, true},
		{http.StatusNotFound, false},
		{http.StatusForbidden, false},
		{http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		if got := isRetryableStatus(tt.code); got != tt.want {
			t.Errorf("isRetryableStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
