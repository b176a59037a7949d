package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/monplancbd/storefront/api/middleware"
	"github.com/monplancbd/storefront/api/responses"
	"github.com/monplancbd/storefront/api/validators"
	pkgerrors "github.com/monplancbd/storefront/pkg/errors"
	"github.com/monplancbd/storefront/pkg/logger"
)

// ProductsList renders the catalog as the requesting session sees it: stock
// net of the session's own cart, and only the options that still fit.
func ProductsList(st Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, st.ProductViews(r.Context(), sessionID))
	}
}

// ProductDetail renders one product for the requesting session.
func ProductDetail(st Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := st.ProductViewByID(r.Context(), sessionID, chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type selectOptionRequest struct {
	Option int `json:"option" validate:"required,gt=0"`
}

// ProductSelectOption records the session's purchase-quantity choice.
func ProductSelectOption(st Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload selectOptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productId")
		if err := st.SelectOption(r.Context(), sessionID, productID, payload.Option); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := st.ProductViewByID(r.Context(), sessionID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func sessionIDFromRequest(r *http.Request) (string, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing")
	}
	return sessionID, nil
}
