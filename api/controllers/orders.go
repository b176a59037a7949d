package controllers

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/monplancbd/storefront/api/responses"
	"github.com/monplancbd/storefront/api/validators"
	"github.com/monplancbd/storefront/internal/checkout"
	"github.com/monplancbd/storefront/internal/orders"
	"github.com/monplancbd/storefront/pkg/logger"
	"github.com/monplancbd/storefront/pkg/types"
)

// OrderSubmitter is the slice of the order service the HTTP layer needs.
type OrderSubmitter interface {
	Submit(ctx context.Context, req orders.SubmitRequest) (*orders.Order, error)
	OrdersForSession(ctx context.Context, sessionID string) ([]orders.Order, error)
}

type orderSubmitRequest struct {
	Discounts        []checkout.Descriptor `json:"discounts" validate:"omitempty,dive"`
	DiscountCodes    []string              `json:"discountCodes"`
	ShippingAddress  *types.Address        `json:"shippingAddress" validate:"required"`
	BillingAddress   *types.Address        `json:"billingAddress"`
	ShippingMethodID *int                  `json:"shippingMethodId"`
	DeviceType       string                `json:"deviceType"`
}

// OrderSubmit prices the session's cart, records the order and forwards it to
// the order API. The cart is cleared only after a successful submission.
func OrderSubmit(st Storefront, svc OrderSubmitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderSubmitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot := st.CartView(r.Context(), sessionID)
		quote, err := checkout.ComputeQuote(snapshot, payload.Discounts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Submit(r.Context(), orders.SubmitRequest{
			SessionID:        sessionID,
			Cart:             snapshot,
			Quote:            *quote,
			DiscountCodes:    payload.DiscountCodes,
			ShippingAddress:  payload.ShippingAddress,
			BillingAddress:   payload.BillingAddress,
			ShippingMethodID: payload.ShippingMethodID,
			CustomerIP:       clientIP(r),
			UserAgent:        r.UserAgent(),
			DeviceType:       payload.DeviceType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		st.ClearCart(r.Context(), sessionID)
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderList returns the session's recorded orders, newest first.
func OrderList(svc OrderSubmitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		records, err := svc.OrdersForSession(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if records == nil {
			records = []orders.Order{}
		}
		responses.WriteSuccess(w, records)
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
