package openfoodfacts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/saadjs/pantry-cli/internal/provider"
)

func TestLookupBarcodeParsesOpenFoodFactsResponse(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/v2/product/3017620422003") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing user agent")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": 1,
  "product": {
    "product_name": "Hazelnut Spread",
    "brands": "Nutella, Ferrero",
    "quantity": "400 g",
    "categories_tags": ["en:spreads", "en:sweet-spreads"]
  }
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client(), Limiter: provider.NewLimiter(RequestsPerMinute)}
	item, raw, err := c.LookupBarcode(context.Background(), "3017620422003")
	if err != nil {
		t.Fatalf("lookup barcode: %v", err)
	}
	if item.Name != "Hazelnut Spread" || item.Brand != "Nutella" || item.Quantity != "400 g" {
		t.Fatalf("unexpected parsed item: %+v", item)
	}
	if len(item.Categories) != 2 || item.Categories[1] != "sweet spreads" {
		t.Fatalf("unexpected categories: %+v", item.Categories)
	}
	if len(raw) == 0 {
		t.Fatalf("expected raw body")
	}
}

func TestLookupBarcodeNotFound(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": 0, "status_verbose": "product not found"}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	if _, _, err := c.LookupBarcode(context.Background(), "12345678"); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestLookupBarcodeHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Client{BaseURL: "http://127.0.0.1:1", Limiter: provider.NewLimiter(1)}
	if _, _, err := c.LookupBarcode(ctx, "12345678"); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
