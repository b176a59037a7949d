package controllers

import (
	"net/http"

	"github.com/monplancbd/storefront/api/responses"
	"github.com/monplancbd/storefront/internal/alerts"
	"github.com/monplancbd/storefront/pkg/logger"
)

// AlertsDrain hands the session its pending notices and clears them. The
// frontend polls this after cart mutations and stock pushes.
func AlertsDrain(sink *alerts.Sink, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sink.Drain(sessionID))
	}
}
