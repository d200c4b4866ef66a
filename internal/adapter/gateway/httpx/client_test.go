package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testOptions() Options {
	return Options{
		Timeout:    2 * time.Second,
		Retries:    2,
		BackoffMin: time.Millisecond,
		BackoffMax: 5 * time.Millisecond,
	}
}

func TestGetJSON_RetriesOn5xx(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var v struct {
		OK bool `json:"ok"`
	}
	c := NewWith(srv.URL, testOptions())
	if err := c.GetJSON(context.Background(), "/", nil, &v); err != nil {
		t.Fatal(err)
	}
	if !v.OK || hits.Load() != 3 {
		t.Fatalf("ok=%v hits=%d", v.OK, hits.Load())
	}
}

func TestGetJSON_NoRetryOn404(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewWith(srv.URL, testOptions())
	err := c.GetJSON(context.Background(), "/", nil, &struct{}{})
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("err = %v, want StatusError 404", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("hits = %d, 404 must not be retried", hits.Load())
	}
}

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
		{http.StatusUnauthorized, false},
	}
	for _, c := range cases {
		if got := shouldRetry(c.status, nil); got != c.want {
			t.Errorf("shouldRetry(%d) = %v, want %v", c.status, got, c.want)
		}
	}
	if !shouldRetry(0, errors.New("connection reset")) {
		t.Error("transport errors must retry")
	}
}

func TestComputeBackoff_HonorsRetryAfterSeconds(t *testing.T) {
	if d := computeBackoff(time.Millisecond, time.Second, 0, "2"); d != 2*time.Second {
		t.Fatalf("backoff = %v, want 2s from Retry-After", d)
	}
}

func TestComputeBackoff_CappedAtMax(t *testing.T) {
	max := 50 * time.Millisecond
	for attempt := 0; attempt < 20; attempt++ {
		if d := computeBackoff(time.Millisecond, max, attempt, ""); d > max {
			t.Fatalf("backoff = %v at attempt %d, above cap %v", d, attempt, max)
		}
	}
}
