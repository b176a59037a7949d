package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records stock feed and cart reconciliation activity.
type StorefrontMetrics struct {
	snapshots      prometheus.Counter
	feedReconnects prometheus.Counter
	passes         *prometheus.HistogramVec
	removedItems   prometheus.Counter
	quotes         *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	snapshots := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_snapshots_total",
		Help: "Stock feed snapshots consumed.",
	})
	feedReconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_feed_reconnects_total",
		Help: "Stock feed reconnect attempts.",
	})
	passes := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_reconcile_duration_seconds",
		Help:    "Duration of cart reconciliation passes.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	removedItems := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_items_removed_total",
		Help: "Cart line items removed by reconciliation.",
	})
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_quotes_total",
		Help: "Checkout quote computations by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(snapshots, feedReconnects, passes, removedItems, quotes)
	return &StorefrontMetrics{
		snapshots:      snapshots,
		feedReconnects: feedReconnects,
		passes:         passes,
		removedItems:   removedItems,
		quotes:         quotes,
	}
}

// IncSnapshot counts a consumed stock snapshot.
func (m *StorefrontMetrics) IncSnapshot() {
	if m == nil || m.snapshots == nil {
		return
	}
	m.snapshots.Inc()
}

// IncFeedReconnect counts a stock feed reconnect attempt.
func (m *StorefrontMetrics) IncFeedReconnect() {
	if m == nil || m.feedReconnects == nil {
		return
	}
	m.feedReconnects.Inc()
}

// ObserveReconcile records the duration of a reconciliation pass.
func (m *StorefrontMetrics) ObserveReconcile(trigger string, duration time.Duration) {
	if m == nil || m.passes == nil {
		return
	}
	m.passes.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

// AddRemovedItems counts line items removed during reconciliation.
func (m *StorefrontMetrics) AddRemovedItems(n int) {
	if m == nil || m.removedItems == nil || n <= 0 {
		return
	}
	m.removedItems.Add(float64(n))
}

// IncQuote counts a checkout quote computation by outcome.
func (m *StorefrontMetrics) IncQuote(outcome string) {
	if m == nil || m.quotes == nil {
		return
	}
	m.quotes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
