package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/monplancbd/storefront/api/responses"
	"github.com/monplancbd/storefront/api/validators"
	cartpkg "github.com/monplancbd/storefront/internal/cart"
	"github.com/monplancbd/storefront/pkg/logger"
)

type cartResponse struct {
	Products []cartpkg.LineItem `json:"products"`
	Total    decimal.Decimal    `json:"total"`
}

func newCartResponse(c cartpkg.Cart) cartResponse {
	items := c.Items
	if items == nil {
		items = []cartpkg.LineItem{}
	}
	return cartResponse{Products: items, Total: c.Total()}
}

// CartFetch returns the session's cart.
func CartFetch(st Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(st.CartView(r.Context(), sessionID)))
	}
}

type cartAddRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Option    int    `json:"option" validate:"required,gt=0"`
	Quantity  int    `json:"quantity" validate:"omitempty,gt=0"`
}

// CartAdd adds a product option to the session's cart.
func CartAdd(st Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := st.AddToCart(r.Context(), sessionID, payload.ProductID, payload.Option, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(st.CartView(r.Context(), sessionID)))
	}
}

// CartRemoveItem deletes one line from the session's cart.
func CartRemoveItem(st Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := st.RemoveFromCart(r.Context(), sessionID, chi.URLParam(r, "cartItemId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(st.CartView(r.Context(), sessionID)))
	}
}
