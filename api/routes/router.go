package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/monplancbd/storefront/api/controllers"
	"github.com/monplancbd/storefront/api/middleware"
	"github.com/monplancbd/storefront/internal/alerts"
	"github.com/monplancbd/storefront/pkg/config"
	"github.com/monplancbd/storefront/pkg/logger"
	"github.com/monplancbd/storefront/pkg/metrics"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	Storefront controllers.Storefront
	Orders     controllers.OrderSubmitter
	Alerts     *alerts.Sink
	Metrics    *metrics.StorefrontMetrics
	Registry   *prometheus.Registry
	Pingers    map[string]controllers.Pinger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.CORS(d.Config.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, d.Pingers))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(d.Config.Session, d.Logger))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(d.Storefront, d.Logger))
			r.Get("/{productId}", controllers.ProductDetail(d.Storefront, d.Logger))
			r.Post("/{productId}/option", controllers.ProductSelectOption(d.Storefront, d.Logger))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(d.Storefront, d.Logger))
			r.Post("/items", controllers.CartAdd(d.Storefront, d.Logger))
			r.Delete("/items/{cartItemId}", controllers.CartRemoveItem(d.Storefront, d.Logger))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/quote", controllers.CheckoutQuote(d.Storefront, d.Metrics, d.Logger))
			r.Post("/order", controllers.OrderSubmit(d.Storefront, d.Orders, d.Logger))
		})

		r.Get("/orders", controllers.OrderList(d.Orders, d.Logger))

		r.Get("/alerts", controllers.AlertsDrain(d.Alerts, d.Logger))
	})

	return r
}
