package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type staticTokens struct {
	token string
}

func (s *staticTokens) Token(ctx context.Context) (string, bool) {
	return s.token, s.token != ""
}

type countingInvalidator struct {
	calls int32
}

func (c *countingInvalidator) HandleSessionExpired() {
	atomic.AddInt32(&c.calls, 1)
}

func TestDoAttachesBearerToken(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, &staticTokens{token: "t1"}, nil)
	if _, err := c.Do(context.Background(), http.MethodGet, "/api/records", nil); err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if gotAuth != "Bearer t1" {
		t.Fatalf("expected Bearer t1, got %q", gotAuth)
	}
}

func TestDoSkipAuthOmitsToken(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, &staticTokens{token: "t1"}, nil)
	if _, err := c.Do(context.Background(), http.MethodGet, "/api/services", nil, SkipAuth()); err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestDoMissingTokenIsNotAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, &staticTokens{}, nil)
	if _, err := c.Do(context.Background(), http.MethodGet, "/api/services", nil); err != nil {
		t.Fatalf("Do error: %v", err)
	}
}

func TestDo401ClearsSessionOnceNoRetry(t *testing.T) {
	var requests int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	inv := &countingInvalidator{}
	c := NewClient(ts.URL, &staticTokens{token: "stale"}, nil)
	c.SetInvalidator(inv)

	_, err := c.Do(context.Background(), http.MethodGet, "/api/records", nil)
	if !IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Fatalf("expected exactly 1 request (no retry), got %d", got)
	}
	if got := atomic.LoadInt32(&inv.calls); got != 1 {
		t.Fatalf("expected invalidator called once, got %d", got)
	}
}

func TestDoHTTPErrorCarriesServerMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "El horario ya fue reservado"})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil, nil)
	_, err := c.Do(context.Background(), http.MethodPost, "/api/appointments", map[string]string{})
	he, ok := err.(*HTTPError)
	if !ok {
		t.Fatalf("expected *HTTPError, got %T", err)
	}
	if he.Status != http.StatusUnprocessableEntity || he.Message != "El horario ya fue reservado" {
		t.Fatalf("unexpected error: %+v", he)
	}
}

func TestDoHTTPErrorFallbackMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil, nil)
	_, err := c.Do(context.Background(), http.MethodGet, "/api/services", nil)
	he, ok := err.(*HTTPError)
	if !ok {
		t.Fatalf("expected *HTTPError, got %T", err)
	}
	if he.Message == "" {
		t.Fatal("expected fallback message for empty error body")
	}
}

func TestCallEmptyBodyReturnsZeroValue(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, nil, nil)
	out, err := Call[map[string]any](context.Background(), c, http.MethodPatch, "/api/users/u1", nil)
	if err != nil {
		t.Fatalf("Call error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty result, got %v", out)
	}
}

func TestDoNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	c := NewClient(ts.URL, nil, nil)
	_, err := c.Do(context.Background(), http.MethodGet, "/api/staff", nil)
	if !IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestAppointmentQueryCacheKeyStable(t *testing.T) {
	q := AppointmentQuery{
		Status:   []AppointmentStatus{StatusPending, StatusConfirmed},
		ClientID: "u1",
		Page:     2,
		Limit:    10,
	}
	if q.CacheKey() != q.CacheKey() {
		t.Fatal("cache key must be deterministic")
	}
	if (AppointmentQuery{}).CacheKey() != "all" {
		t.Fatalf("empty query key = %q, want all", (AppointmentQuery{}).CacheKey())
	}
	if q.CacheKey() == (AppointmentQuery{ClientID: "u2"}).CacheKey() {
		t.Fatal("distinct queries must produce distinct keys")
	}
}

func TestStatusHelpers(t *testing.T) {
	for _, s := range []AppointmentStatus{StatusCompleted, StatusCancelled, StatusNoShow} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []AppointmentStatus{StatusPending, StatusConfirmed} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if StatusNoShow.Label() != "No asistió" {
		t.Fatalf("unexpected label %q", StatusNoShow.Label())
	}
}
