package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/monplancbd/storefront/pkg/config"
	"github.com/monplancbd/storefront/pkg/enums"
)

const catalogPayload = `{
  "101": {
    "id": 101,
    "name": "Trim Orange Bud",
    "slug": "trim-orange-bud",
    "category": "fleurs-cbd",
    "categoryId": "7",
    "pricesPer": "g",
    "stock": "41",
    "VATRate": 21,
    "isPromo": false,
    "prices": {"10": {"price": "12.00"}, "1": {"price": "1.50"}, "50": {"price": "45.00"}},
    "images": {"main": {"url": "https://cdn.example/trim.jpg", "alt": "trim"}},
    "ratings": {"amount": 4, "value": 4.2}
  },
  "202": {
    "id": "202",
    "name": "Huile 10%",
    "slug": "huile-10",
    "category": "huiles-cbd",
    "categoryId": 9,
    "pricesPer": "unit",
    "stock": 6,
    "VATRate": 20,
    "isPromo": true,
    "prices": {"1": {"price": "29.90"}},
    "images": {"main": {"url": "https://cdn.example/oil.jpg", "alt": "oil"}},
    "ratings": {"amount": 1, "value": 5}
  },
  "303": {
    "id": "303",
    "name": "Unpriced",
    "slug": "unpriced",
    "category": "fleurs-cbd",
    "pricesPer": "g",
    "stock": "10",
    "prices": {}
  }
}`

func TestLoaderFetchNormalizesCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(catalogPayload))
	}))
	defer srv.Close()

	loader := NewLoader(config.CatalogConfig{BaseURL: srv.URL, FetchTimeout: 0}, nil)
	products, err := loader.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if len(products) != 2 {
		t.Fatalf("expected 2 products (unpriced skipped), got %d", len(products))
	}

	// Sorted by name: "Huile 10%" before "Trim Orange Bud".
	oil, trim := products[0], products[1]
	if trim.ID != "101" {
		t.Fatalf("numeric id should normalize to string, got %q", trim.ID)
	}
	if trim.Kind != enums.ProductKindFlower {
		t.Fatalf("expected flower kind, got %s", trim.Kind)
	}
	if trim.Stock != 41 {
		t.Fatalf("string stock should parse, got %d", trim.Stock)
	}
	if trim.DefaultOption != 1 {
		t.Fatalf("default option must be the smallest quantity, got %d", trim.DefaultOption)
	}
	if price, ok := trim.PriceFor(50); !ok || !price.Equal(decimal.RequireFromString("45.00")) {
		t.Fatalf("unexpected 50g price: %s ok=%v", price, ok)
	}

	if oil.ID != "202" {
		t.Fatalf("expected oil product first, got %q", oil.ID)
	}
	if oil.CategoryID != "9" {
		t.Fatalf("numeric categoryId should normalize, got %q", oil.CategoryID)
	}
	if oil.PricesPer != enums.PriceUnitItem {
		t.Fatalf("expected unit pricing, got %s", oil.PricesPer)
	}
	if !oil.IsPromo {
		t.Fatal("promo flag lost")
	}
}

func TestLoaderFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	loader := NewLoader(config.CatalogConfig{BaseURL: srv.URL}, nil)
	if _, err := loader.Fetch(context.Background()); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}
