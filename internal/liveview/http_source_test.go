package liveview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maisonluxe/storefront/internal/entity"
)

func TestHTTPSourceFetchOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"o1","total_price":1200},{"id":"o2","total_price":300}]`))
	}))
	defer srv.Close()

	source := NewHTTPSource(srv.URL + "/")
	orders, err := source.FetchOrders(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "o1" || orders[1].TotalPrice != 300 {
		t.Errorf("orders = %+v", orders)
	}
}

func TestHTTPSourceErrorMapping(t *testing.T) {
	status := http.StatusInternalServerError
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	source := NewHTTPSource(srv.URL)

	_, err := source.FetchOrders(context.Background())
	var te *entity.TransportError
	if !errors.As(err, &te) {
		t.Errorf("5xx: got %v, want TransportError", err)
	}

	status = http.StatusNotFound
	_, err = source.FetchProduct(context.Background(), "ghost")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("404: got %v, want ErrNotFound", err)
	}
}

func TestHTTPSourceFetchSettings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/settings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"store_name":"Maison Luxe","currency":"EUR"}`))
	}))
	defer srv.Close()

	settings, err := NewHTTPSource(srv.URL).FetchSettings(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if settings.StoreName != "Maison Luxe" || settings.Currency != "EUR" {
		t.Errorf("settings = %+v", settings)
	}
}
