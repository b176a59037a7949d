package controllers

import (
	"context"

	"github.com/monplancbd/storefront/internal/cart"
	"github.com/monplancbd/storefront/internal/store"
)

// Storefront is the state surface the HTTP layer drives. The concrete
// implementation serializes every call, so handlers never coordinate.
type Storefront interface {
	ProductViews(ctx context.Context, sessionID string) []store.ProductView
	ProductViewByID(ctx context.Context, sessionID, productID string) (store.ProductView, error)
	SelectOption(ctx context.Context, sessionID, productID string, option int) error
	AddToCart(ctx context.Context, sessionID, productID string, option, quantity int) (cart.LineItem, error)
	RemoveFromCart(ctx context.Context, sessionID, cartItemID string) (cart.LineItem, error)
	ClearCart(ctx context.Context, sessionID string)
	CartView(ctx context.Context, sessionID string) cart.Cart
}
