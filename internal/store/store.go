package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/monplancbd/storefront/internal/alerts"
	"github.com/monplancbd/storefront/internal/cart"
	"github.com/monplancbd/storefront/internal/catalog"
	"github.com/monplancbd/storefront/pkg/enums"
	"github.com/monplancbd/storefront/pkg/errors"
	"github.com/monplancbd/storefront/pkg/logger"
	"github.com/monplancbd/storefront/pkg/metrics"
	"github.com/monplancbd/storefront/pkg/redis"
)

// ProductView is a product as one session sees it: stock net of that session's
// own cart, purchase options that fit the remaining stock, and the session's
// current option selection.
type ProductView struct {
	ID               string                `json:"id"`
	Name             string                `json:"name"`
	Slug             string                `json:"slug"`
	Kind             enums.ProductKind     `json:"kind"`
	Category         string                `json:"category"`
	CategoryID       string                `json:"categoryId"`
	PricesPer        enums.PriceUnit       `json:"pricesPer"`
	Stock            int                   `json:"stock"`
	FormattedOptions []catalog.OptionPrice `json:"formattedOptions"`
	SelectedOption   int                   `json:"selectedOption"`
	SelectedPrice    decimal.Decimal       `json:"selectedPrice"`
	VATRate          decimal.Decimal       `json:"VATRate"`
	IsPromo          bool                  `json:"isPromo"`
	Image            catalog.Image         `json:"image"`
	Ratings          catalog.Ratings       `json:"ratings"`
}

type session struct {
	id         string
	cart       cart.Cart
	selections map[string]int
}

// Store owns the storefront state: the shared catalog with feed-reported
// stocks, and per-session carts and option selections. Every mutation is one
// synchronous transition under a single mutex, so availability checks, cart
// edits and reconciliation never interleave.
type Store struct {
	mu       sync.Mutex
	products map[string]*catalog.Product
	order    []string
	sessions map[string]*session

	carts   redis.CartStore
	cartTTL time.Duration
	sink    *alerts.Sink
	metrics *metrics.StorefrontMetrics
	logg    *logger.Logger
}

// Options carries the store's collaborators. CartStore may be nil in tests;
// persistence is then skipped.
type Options struct {
	Carts   redis.CartStore
	CartTTL time.Duration
	Alerts  *alerts.Sink
	Metrics *metrics.StorefrontMetrics
	Logger  *logger.Logger
}

// New builds a store seeded with the given catalog, preserving product order.
func New(products []catalog.Product, opts Options) *Store {
	s := &Store{
		products: make(map[string]*catalog.Product, len(products)),
		order:    make([]string, 0, len(products)),
		sessions: make(map[string]*session),
		carts:    opts.Carts,
		cartTTL:  opts.CartTTL,
		sink:     opts.Alerts,
		metrics:  opts.Metrics,
		logg:     opts.Logger,
	}
	if s.sink == nil {
		s.sink = alerts.NewSink()
	}
	for i := range products {
		p := products[i]
		s.products[p.ID] = &p
		s.order = append(s.order, p.ID)
	}
	return s
}

// ApplyStockSnapshot replaces every product's stock with the feed's
// authoritative numbers and reconciles all session carts against them.
// Products absent from the snapshot are treated as gone: their stock drops to
// zero and their cart lines are removed everywhere.
func (s *Store) ApplyStockSnapshot(ctx context.Context, stocks map[string]int) {
	started := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, product := range s.products {
		if reported, ok := stocks[id]; ok {
			product.Stock = reported
		} else {
			product.Stock = 0
		}
	}

	removed := 0
	for _, sess := range s.sessions {
		adjusted, removals := cart.Reconcile(sess.cart, stocks)
		for _, removal := range removals {
			s.pushRemovalAlert(sess.id, removal)
		}
		if len(removals) > 0 {
			sess.cart = adjusted
			removed += len(removals)
			s.persistCart(ctx, sess)
		}
		s.resetInvalidSelections(sess)
	}

	s.metrics.IncSnapshot()
	s.metrics.AddRemovedItems(removed)
	s.metrics.ObserveReconcile("snapshot", time.Since(started))

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"products":      len(stocks),
			"removed_items": removed,
		}), "stock snapshot applied")
	}
}

// ensureSession rehydrates the session's cart from persistence on first sight
// and reconciles the restored cart against current stocks.
func (s *Store) ensureSession(ctx context.Context, sessionID string) *session {
	if sess, ok := s.sessions[sessionID]; ok {
		return sess
	}
	sess := &session{id: sessionID, selections: make(map[string]int)}
	sess.cart = s.restoreCart(ctx, sessionID)
	if !sess.cart.IsEmpty() {
		adjusted, removals := cart.Reconcile(sess.cart, s.currentStocks())
		for _, removal := range removals {
			s.pushRemovalAlert(sessionID, removal)
		}
		if len(removals) > 0 {
			sess.cart = adjusted
			s.metrics.AddRemovedItems(len(removals))
		}
	}
	s.sessions[sessionID] = sess
	return sess
}

func (s *Store) restoreCart(ctx context.Context, sessionID string) cart.Cart {
	if s.carts == nil {
		return cart.Cart{}
	}
	payload, err := s.carts.LoadCart(ctx, sessionID)
	if err != nil {
		if err != redis.ErrNotFound && s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "cart restore failed: "+err.Error())
		}
		return cart.Cart{}
	}
	var restored cart.Cart
	if err := json.Unmarshal([]byte(payload), &restored); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "stored cart unreadable, starting fresh")
		}
		return cart.Cart{}
	}
	return restored
}

// AddToCart adds quantity units of the product's option to the session's cart.
// The line price is frozen from the current catalog. Availability is checked
// against the session's own remaining stock; exceeding it is a conflict.
func (s *Store) AddToCart(ctx context.Context, sessionID, productID string, option, quantity int) (cart.LineItem, error) {
	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return cart.LineItem{}, errors.New(errors.CodeNotFound, "unknown product "+productID)
	}
	price, ok := product.PriceFor(option)
	if !ok {
		return cart.LineItem{}, errors.New(errors.CodeValidation,
			fmt.Sprintf("product %s has no %d%s option", productID, option, product.PricesPer))
	}

	sess := s.ensureSession(ctx, sessionID)
	available := product.Stock - sess.cart.CommittedFor(productID)
	if option*quantity > available {
		return cart.LineItem{}, errors.New(errors.CodeConflict,
			fmt.Sprintf("only %d%s of %s left for this cart", max(available, 0), product.PricesPer, product.Name))
	}

	line := sess.cart.Add(cart.AddRequest{
		ProductID:  product.ID,
		Name:       product.Name,
		Option:     option,
		Per:        product.PricesPer,
		Quantity:   quantity,
		UnitPrice:  price,
		VATRate:    product.VATRate,
		CategoryID: product.CategoryID,
		IsPromo:    product.IsPromo,
		Image:      product.Image,
	})
	s.persistCart(ctx, sess)
	s.resetInvalidSelections(sess)
	s.sink.Push(sessionID, "Produit ajouté au panier",
		fmt.Sprintf("%s, %d%s", product.Name, option, product.PricesPer), enums.AlertLevelSuccess)
	return line, nil
}

// RemoveFromCart deletes the line with the given cart item id.
func (s *Store) RemoveFromCart(ctx context.Context, sessionID, cartItemID string) (cart.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensureSession(ctx, sessionID)
	line := sess.cart.Find(cartItemID)
	if line == nil {
		return cart.LineItem{}, errors.New(errors.CodeNotFound, "cart item not found")
	}
	removed := *line
	sess.cart.Remove(cartItemID)
	s.persistCart(ctx, sess)
	s.resetInvalidSelections(sess)
	return removed, nil
}

// ClearCart empties the session's cart, for example after order submission.
func (s *Store) ClearCart(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensureSession(ctx, sessionID)
	sess.cart = cart.Cart{}
	if s.carts != nil {
		if err := s.carts.DeleteCart(ctx, sessionID); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "cart delete failed: "+err.Error())
		}
	}
	s.resetInvalidSelections(sess)
}

// SelectOption records the session's chosen purchase quantity for a product.
// The option must exist and fit the session's remaining stock.
func (s *Store) SelectOption(ctx context.Context, sessionID, productID string, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return errors.New(errors.CodeNotFound, "unknown product "+productID)
	}
	sess := s.ensureSession(ctx, sessionID)
	formatted := s.formattedFor(sess, product)
	if !catalog.ContainsOption(formatted, option) {
		if product.HasOption(option) {
			return errors.New(errors.CodeConflict,
				fmt.Sprintf("option %d%s of %s exceeds the remaining stock", option, product.PricesPer, product.Name))
		}
		return errors.New(errors.CodeValidation,
			fmt.Sprintf("product %s has no %d%s option", productID, option, product.PricesPer))
	}
	sess.selections[productID] = option
	return nil
}

// CartView returns a copy of the session's cart.
func (s *Store) CartView(ctx context.Context, sessionID string) cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureSession(ctx, sessionID).cart.Clone()
}

// ProductViews renders the whole catalog from the session's point of view, in
// catalog order.
func (s *Store) ProductViews(ctx context.Context, sessionID string) []ProductView {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.ensureSession(ctx, sessionID)
	views := make([]ProductView, 0, len(s.order))
	for _, id := range s.order {
		views = append(views, s.view(sess, s.products[id]))
	}
	return views
}

// ProductViewByID renders one product from the session's point of view.
func (s *Store) ProductViewByID(ctx context.Context, sessionID, productID string) (ProductView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return ProductView{}, errors.New(errors.CodeNotFound, "unknown product "+productID)
	}
	return s.view(s.ensureSession(ctx, sessionID), product), nil
}

func (s *Store) view(sess *session, product *catalog.Product) ProductView {
	available := product.Stock - sess.cart.CommittedFor(product.ID)
	formatted := catalog.FormatOptions(product.Options, available)
	selected := s.selectionFor(sess, product, formatted)

	var price decimal.Decimal
	if selected != 0 {
		price, _ = product.PriceFor(selected)
	}
	return ProductView{
		ID:               product.ID,
		Name:             product.Name,
		Slug:             product.Slug,
		Kind:             product.Kind,
		Category:         product.Category,
		CategoryID:       product.CategoryID,
		PricesPer:        product.PricesPer,
		Stock:            max(available, 0),
		FormattedOptions: formatted,
		SelectedOption:   selected,
		SelectedPrice:    price,
		VATRate:          product.VATRate,
		IsPromo:          product.IsPromo,
		Image:            product.Image,
		Ratings:          product.Ratings,
	}
}

func (s *Store) formattedFor(sess *session, product *catalog.Product) []catalog.OptionPrice {
	available := product.Stock - sess.cart.CommittedFor(product.ID)
	return catalog.FormatOptions(product.Options, available)
}

// selectionFor resolves the session's effective option: the recorded choice if
// still purchasable, the product default otherwise, else the largest option
// that fits. Zero means nothing is purchasable.
func (s *Store) selectionFor(sess *session, product *catalog.Product, formatted []catalog.OptionPrice) int {
	if chosen, ok := sess.selections[product.ID]; ok && catalog.ContainsOption(formatted, chosen) {
		return chosen
	}
	if catalog.ContainsOption(formatted, product.DefaultOption) {
		return product.DefaultOption
	}
	if len(formatted) > 0 {
		return formatted[len(formatted)-1].Option
	}
	return 0
}

// resetInvalidSelections rewrites recorded choices that no longer fit the
// session's remaining stock, falling back to the largest purchasable option.
func (s *Store) resetInvalidSelections(sess *session) {
	for productID, chosen := range sess.selections {
		product, ok := s.products[productID]
		if !ok {
			delete(sess.selections, productID)
			continue
		}
		formatted := s.formattedFor(sess, product)
		if catalog.ContainsOption(formatted, chosen) {
			continue
		}
		if len(formatted) == 0 {
			delete(sess.selections, productID)
			continue
		}
		sess.selections[productID] = formatted[len(formatted)-1].Option
	}
}

func (s *Store) pushRemovalAlert(sessionID string, removal cart.Removal) {
	switch removal.Reason {
	case cart.RemovalReasonProductGone:
		s.sink.Push(sessionID, "Produit retiré du panier",
			fmt.Sprintf("%s n'est plus disponible", removal.Item.Name), enums.AlertLevelDanger)
	default:
		s.sink.Push(sessionID, "Stock insuffisant",
			fmt.Sprintf("%s, %d%s a été retiré du panier", removal.Item.Name, removal.Item.Option, removal.Item.Per),
			enums.AlertLevelDanger)
	}
}

func (s *Store) persistCart(ctx context.Context, sess *session) {
	if s.carts == nil {
		return
	}
	payload, err := json.Marshal(sess.cart)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "cart serialization failed", err)
		}
		return
	}
	if err := s.carts.StoreCart(ctx, sess.id, string(payload), s.cartTTL); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithSessionID(ctx, sess.id), "cart persistence failed: "+err.Error())
	}
}

func (s *Store) currentStocks() map[string]int {
	stocks := make(map[string]int, len(s.products))
	for id, product := range s.products {
		stocks[id] = product.Stock
	}
	return stocks
}
