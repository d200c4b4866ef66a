package steamstore_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tontt4/steamsync/internal/adapter/gateway/steamstore"
	"github.com/tontt4/steamsync/internal/domain/catalog"
)

func newClient(t *testing.T, handler http.HandlerFunc) *steamstore.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return steamstore.New(steamstore.Config{BaseURL: srv.URL, CacheTTL: time.Hour})
}

func mustRef(t *testing.T, s string) catalog.Ref {
	t.Helper()
	ref, ok := catalog.ParseRef(s)
	if !ok {
		t.Fatalf("bad ref %q", s)
	}
	return ref
}

func TestPrice_App(t *testing.T) {
	var hits atomic.Int32
	var lastQuery string
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		lastQuery = r.URL.RawQuery
		if r.URL.Path != "/api/appdetails" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"730":{"success":true,"data":{"price_overview":{"final":45999}}}}`))
	})

	p, err := cl.Price(context.Background(), mustRef(t, "730"), "UAH")
	if err != nil {
		t.Fatal(err)
	}
	if p != 459.99 {
		t.Fatalf("price = %v, want 459.99", p)
	}
	q := lastQuery
	for _, want := range []string{"appids=730", "cc=ua", "filters=price_overview"} {
		if !strings.Contains(q, want) {
			t.Errorf("query %q missing %q", q, want)
		}
	}

	// second lookup is served from cache
	if _, err := cl.Price(context.Background(), mustRef(t, "730"), "UAH"); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Fatalf("hits = %d, want 1", hits.Load())
	}
}

func TestPrice_Package(t *testing.T) {
	var lastQuery string
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.RawQuery
		if r.URL.Path != "/api/packagedetails" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"12345":{"success":true,"data":{"price":{"final":1299}}}}`))
	})

	p, err := cl.Price(context.Background(), mustRef(t, "sub_12345"), "RUB")
	if err != nil {
		t.Fatal(err)
	}
	if p != 12.99 {
		t.Fatalf("price = %v, want 12.99", p)
	}
	if !strings.Contains(lastQuery, "packageids=12345") || !strings.Contains(lastQuery, "cc=ru") {
		t.Errorf("query = %q", lastQuery)
	}
}

func TestPrice_UnknownCurrencyDefaultsToUA(t *testing.T) {
	var lastQuery string
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.RawQuery
		w.Write([]byte(`{"730":{"success":true,"data":{"price_overview":{"final":100}}}}`))
	})
	if _, err := cl.Price(context.Background(), mustRef(t, "730"), "GBP"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(lastQuery, "cc=ua") {
		t.Errorf("query = %q, want cc=ua fallback", lastQuery)
	}
}

func TestPrice_PricelessEntryIsZeroAndCached(t *testing.T) {
	var hits atomic.Int32
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"440":{"success":true,"data":[]}}`))
	})

	for i := 0; i < 2; i++ {
		p, err := cl.Price(context.Background(), mustRef(t, "440"), "UAH")
		if err != nil {
			t.Fatal(err)
		}
		if p != 0 {
			t.Fatalf("price = %v, want 0 for free entry", p)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("hits = %d, want zero result cached", hits.Load())
	}
}

func TestPrice_UnsuccessfulEntryIsZero(t *testing.T) {
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"999999":{"success":false}}`))
	})
	p, err := cl.Price(context.Background(), mustRef(t, "999999"), "UAH")
	if err != nil {
		t.Fatal(err)
	}
	if p != 0 {
		t.Fatalf("price = %v, want 0", p)
	}
}

func TestPrice_FailureNotCached(t *testing.T) {
	var hits atomic.Int32
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	})

	for i := 0; i < 2; i++ {
		if _, err := cl.Price(context.Background(), mustRef(t, "730"), "UAH"); err == nil {
			t.Fatal("want error from 404")
		}
	}
	if hits.Load() != 2 {
		t.Fatalf("hits = %d, want failed lookups to hit the store again", hits.Load())
	}
}

func TestPrice_InvalidRefNoRequest(t *testing.T) {
	var hits atomic.Int32
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })

	if _, err := cl.Price(context.Background(), catalog.Ref{ID: "abc"}, "UAH"); err != steamstore.ErrInvalidRef {
		t.Fatalf("err = %v, want ErrInvalidRef", err)
	}
	if hits.Load() != 0 {
		t.Fatal("invalid ref reached the network")
	}
}

func TestName_ResolvedAndCached(t *testing.T) {
	var hits atomic.Int32
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"730":{"success":true,"data":{"name":"Counter-Strike 2"}}}`))
	})

	for i := 0; i < 2; i++ {
		if n := cl.Name(context.Background(), mustRef(t, "730")); n != "Counter-Strike 2" {
			t.Fatalf("name = %q", n)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("hits = %d, want 1", hits.Load())
	}
}

func TestName_FailureFallsBackToPlaceholder(t *testing.T) {
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	if n := cl.Name(context.Background(), mustRef(t, "sub_777")); n != "Steam sub_777" {
		t.Fatalf("name = %q, want placeholder", n)
	}
}
