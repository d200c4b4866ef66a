package funpay_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tontt4/steamsync/internal/adapter/gateway/funpay"
	"github.com/tontt4/steamsync/internal/domain/listing"
)

func TestGetFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lots/1001/fields" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sekret" {
			t.Errorf("auth = %q", got)
		}
		w.Write([]byte(`{"id":"1001","price":11.32,"title":"CS2 key"}`))
	}))
	defer srv.Close()

	cl := funpay.New(funpay.Config{BaseURL: srv.URL, Token: "sekret"})
	f, err := cl.GetFields(context.Background(), "1001")
	if err != nil {
		t.Fatal(err)
	}
	if f.ID != "1001" || f.Price != 11.32 || f.Title != "CS2 key" {
		t.Fatalf("fields = %+v", f)
	}
}

func TestGetFields_FillsMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price":5.0}`))
	}))
	defer srv.Close()

	cl := funpay.New(funpay.Config{BaseURL: srv.URL})
	f, err := cl.GetFields(context.Background(), "77")
	if err != nil {
		t.Fatal(err)
	}
	if f.ID != "77" {
		t.Fatalf("ID = %q, want request id filled in", f.ID)
	}
}

func TestGetFields_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cl := funpay.New(funpay.Config{BaseURL: srv.URL})
	_, err := cl.GetFields(context.Background(), "1001")
	if !errors.Is(err, listing.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveFields(t *testing.T) {
	var got listing.Fields
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/lots/1001/fields" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cl := funpay.New(funpay.Config{BaseURL: srv.URL})
	err := cl.SaveFields(context.Background(), listing.Fields{ID: "1001", Price: 12.5, Title: "CS2 key"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Price != 12.5 || got.Title != "CS2 key" {
		t.Fatalf("server saw %+v", got)
	}
}

func TestSaveFields_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cl := funpay.New(funpay.Config{BaseURL: srv.URL})
	err := cl.SaveFields(context.Background(), listing.Fields{ID: "1001", Price: 1})
	if !errors.Is(err, listing.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
