package controllers

import (
	"net/http"

	"github.com/monplancbd/storefront/api/responses"
	"github.com/monplancbd/storefront/api/validators"
	"github.com/monplancbd/storefront/internal/checkout"
	"github.com/monplancbd/storefront/pkg/logger"
	"github.com/monplancbd/storefront/pkg/metrics"
)

type quoteRequest struct {
	Discounts []checkout.Descriptor `json:"discounts" validate:"omitempty,dive"`
}

// CheckoutQuote prices the session's cart against the supplied promotions.
func CheckoutQuote(st Storefront, m *metrics.StorefrontMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := checkout.ComputeQuote(st.CartView(r.Context(), sessionID), payload.Discounts)
		if err != nil {
			m.IncQuote("rejected")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		m.IncQuote("priced")
		responses.WriteSuccess(w, quote)
	}
}
