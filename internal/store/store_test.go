package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/monplancbd/storefront/internal/alerts"
	"github.com/monplancbd/storefront/internal/cart"
	"github.com/monplancbd/storefront/internal/catalog"
	"github.com/monplancbd/storefront/pkg/enums"
	"github.com/monplancbd/storefront/pkg/errors"
	"github.com/monplancbd/storefront/pkg/redis"
)

type fakeCartStore struct {
	mu      sync.Mutex
	saved   map[string]string
	deleted []string
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{saved: make(map[string]string)}
}

func (f *fakeCartStore) StoreCart(_ context.Context, sessionID, payload string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[sessionID] = payload
	return nil
}

func (f *fakeCartStore) LoadCart(_ context.Context, sessionID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.saved[sessionID]
	if !ok {
		return "", redis.ErrNotFound
	}
	return payload, nil
}

func (f *fakeCartStore) DeleteCart(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, sessionID)
	f.deleted = append(f.deleted, sessionID)
	return nil
}

func testCatalog() []catalog.Product {
	return []catalog.Product{
		{
			ID:        "amnesia",
			Name:      "Amnesia",
			Slug:      "fleur-amnesia",
			Kind:      enums.ProductKindFlower,
			PricesPer: enums.PriceUnitGram,
			Options: map[int]decimal.Decimal{
				5:  decimal.RequireFromString("25"),
				10: decimal.RequireFromString("45"),
				20: decimal.RequireFromString("80"),
			},
			Stock:         30,
			VATRate:       decimal.RequireFromString("20"),
			DefaultOption: 5,
		},
		{
			ID:        "huile-10",
			Name:      "Huile CBD 10%",
			Slug:      "huile-cbd-10",
			Kind:      enums.ProductKindOil,
			PricesPer: enums.PriceUnitItem,
			Options: map[int]decimal.Decimal{
				1: decimal.RequireFromString("29.90"),
			},
			Stock:         4,
			VATRate:       decimal.RequireFromString("20"),
			DefaultOption: 1,
		},
	}
}

func newTestStore(carts redis.CartStore) (*Store, *alerts.Sink) {
	sink := alerts.NewSink()
	return New(testCatalog(), Options{Carts: carts, CartTTL: time.Hour, Alerts: sink}), sink
}

func TestAddToCartMergesAndFreezesPrice(t *testing.T) {
	ctx := context.Background()
	carts := newFakeCartStore()
	s, _ := newTestStore(carts)

	first, err := s.AddToCart(ctx, "s1", "amnesia", 5, 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !first.UnitPrice.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("expected frozen unit price 25, got %s", first.UnitPrice)
	}

	second, err := s.AddToCart(ctx, "s1", "amnesia", 5, 2)
	if err != nil {
		t.Fatalf("merge add: %v", err)
	}
	if second.CartItemID != first.CartItemID {
		t.Fatalf("expected merge into existing line")
	}
	if second.Quantity != 3 || !second.TotalPrice.Equal(decimal.RequireFromString("75")) {
		t.Fatalf("unexpected merged line: qty=%d total=%s", second.Quantity, second.TotalPrice)
	}

	payload, ok := carts.saved["s1"]
	if !ok {
		t.Fatalf("expected cart persisted after mutation")
	}
	var persisted cart.Cart
	if err := json.Unmarshal([]byte(payload), &persisted); err != nil {
		t.Fatalf("persisted cart unreadable: %v", err)
	}
	if len(persisted.Items) != 1 || persisted.Items[0].Quantity != 3 {
		t.Fatalf("unexpected persisted cart: %+v", persisted)
	}
}

func TestAddToCartRejectsBeyondSessionAvailability(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(nil)

	if _, err := s.AddToCart(ctx, "s1", "amnesia", 20, 1); err != nil {
		t.Fatalf("add 20g: %v", err)
	}
	// 30 in stock, 20 committed: a 20g line no longer fits this session.
	_, err := s.AddToCart(ctx, "s1", "amnesia", 20, 1)
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	// Another session still sees the full stock.
	if _, err := s.AddToCart(ctx, "s2", "amnesia", 20, 1); err != nil {
		t.Fatalf("add from second session: %v", err)
	}
}

func TestAddToCartUnknownProductAndOption(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(nil)

	_, err := s.AddToCart(ctx, "s1", "ghost", 5, 1)
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err = s.AddToCart(ctx, "s1", "amnesia", 7, 1)
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplyStockSnapshotTrimsSmallestOptionFirst(t *testing.T) {
	ctx := context.Background()
	carts := newFakeCartStore()
	s, sink := newTestStore(carts)

	if _, err := s.AddToCart(ctx, "s1", "amnesia", 5, 2); err != nil {
		t.Fatalf("add 5g: %v", err)
	}
	if _, err := s.AddToCart(ctx, "s1", "amnesia", 10, 1); err != nil {
		t.Fatalf("add 10g: %v", err)
	}
	sink.Drain("s1")

	s.ApplyStockSnapshot(ctx, map[string]int{"amnesia": 12, "huile-10": 4})

	got := s.CartView(ctx, "s1")
	if len(got.Items) != 1 || got.Items[0].Option != 10 {
		t.Fatalf("expected only the 10g line to survive, got %+v", got.Items)
	}

	pushed := sink.Drain("s1")
	if len(pushed) != 1 || pushed[0].Level != enums.AlertLevelDanger {
		t.Fatalf("expected one danger alert, got %+v", pushed)
	}

	var persisted cart.Cart
	if err := json.Unmarshal([]byte(carts.saved["s1"]), &persisted); err != nil {
		t.Fatalf("persisted cart unreadable: %v", err)
	}
	if len(persisted.Items) != 1 {
		t.Fatalf("expected trimmed cart persisted, got %+v", persisted.Items)
	}
}

func TestApplyStockSnapshotDropsVanishedProducts(t *testing.T) {
	ctx := context.Background()
	s, sink := newTestStore(nil)

	if _, err := s.AddToCart(ctx, "s1", "huile-10", 1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	sink.Drain("s1")

	s.ApplyStockSnapshot(ctx, map[string]int{"amnesia": 30})

	if got := s.CartView(ctx, "s1"); !got.IsEmpty() {
		t.Fatalf("expected vanished product removed from cart, got %+v", got.Items)
	}
	view, err := s.ProductViewByID(ctx, "s1", "huile-10")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Stock != 0 || len(view.FormattedOptions) != 0 || view.SelectedOption != 0 {
		t.Fatalf("expected sold-out view, got %+v", view)
	}
}

func TestSelectOptionValidationAndReset(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(nil)

	if err := s.SelectOption(ctx, "s1", "amnesia", 20); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := s.SelectOption(ctx, "s1", "amnesia", 7); err == nil || errors.As(err).Code() != errors.CodeValidation {
		t.Fatalf("expected validation error for unknown option, got %v", err)
	}

	// Shrink stock to 12: the 20g choice no longer fits and must fall back to
	// the largest purchasable option.
	s.ApplyStockSnapshot(ctx, map[string]int{"amnesia": 12, "huile-10": 4})

	view, err := s.ProductViewByID(ctx, "s1", "amnesia")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.SelectedOption != 10 {
		t.Fatalf("expected selection reset to 10, got %d", view.SelectedOption)
	}
	if err := s.SelectOption(ctx, "s1", "amnesia", 20); errors.As(err).Code() != errors.CodeConflict {
		t.Fatalf("expected conflict selecting beyond stock, got %v", err)
	}
}

func TestProductViewDefaultsAndCommittedStock(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(nil)

	views := s.ProductViews(ctx, "s1")
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].SelectedOption != 5 {
		t.Fatalf("expected default option 5, got %d", views[0].SelectedOption)
	}
	if !views[0].SelectedPrice.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("expected default price 25, got %s", views[0].SelectedPrice)
	}

	if _, err := s.AddToCart(ctx, "s1", "amnesia", 20, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	view, err := s.ProductViewByID(ctx, "s1", "amnesia")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Stock != 10 {
		t.Fatalf("expected 10 left after committing 20 of 30, got %d", view.Stock)
	}
	if len(view.FormattedOptions) != 2 || view.FormattedOptions[1].Option != 10 {
		t.Fatalf("expected options [5 10], got %+v", view.FormattedOptions)
	}
}

func TestSessionRehydratesPersistedCart(t *testing.T) {
	ctx := context.Background()
	carts := newFakeCartStore()

	first, _ := newTestStore(carts)
	if _, err := first.AddToCart(ctx, "s1", "amnesia", 10, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A new store instance (fresh process) restores the cart on first contact.
	second, _ := newTestStore(carts)
	got := second.CartView(ctx, "s1")
	if len(got.Items) != 1 || got.Items[0].Option != 10 || got.Items[0].Quantity != 1 {
		t.Fatalf("expected rehydrated cart, got %+v", got.Items)
	}
}

func TestClearCartDeletesPersistedCopy(t *testing.T) {
	ctx := context.Background()
	carts := newFakeCartStore()
	s, _ := newTestStore(carts)

	if _, err := s.AddToCart(ctx, "s1", "amnesia", 5, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.ClearCart(ctx, "s1")

	if got := s.CartView(ctx, "s1"); !got.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", got.Items)
	}
	if len(carts.deleted) != 1 || carts.deleted[0] != "s1" {
		t.Fatalf("expected persisted copy deleted, got %+v", carts.deleted)
	}
}
