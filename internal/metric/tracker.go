// Package metric implements the purchase-tracking collaborator on top of
// Prometheus. Each confirmed purchase becomes a counter increment, a
// revenue observation and a per-product counter, alongside one structured
// log event.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"kart-pay/internal/checkout"
)

// PurchaseTracker emits purchase events as Prometheus metrics.
type PurchaseTracker struct {
	purchases *prometheus.CounterVec
	revenue   *prometheus.CounterVec
	products  *prometheus.CounterVec
	logger    zerolog.Logger
}

// NewPurchaseTracker creates a tracker and registers its collectors.
func NewPurchaseTracker(reg prometheus.Registerer, logger zerolog.Logger) *PurchaseTracker {
	t := &PurchaseTracker{
		purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kartpay",
			Subsystem: "payment",
			Name:      "purchases_total",
			Help:      "Confirmed purchases by currency",
		}, []string{"currency"}),
		revenue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kartpay",
			Subsystem: "payment",
			Name:      "revenue_major_units_total",
			Help:      "Confirmed purchase value in major currency units",
		}, []string{"currency"}),
		products: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kartpay",
			Subsystem: "payment",
			Name:      "products_sold_total",
			Help:      "Products sold in confirmed purchases",
		}, []string{"category"}),
		logger: logger.With().Str("component", "purchase-tracker").Logger(),
	}

	reg.MustRegister(t.purchases, t.revenue, t.products)
	return t
}

// TrackPurchase implements checkout.Tracker.
func (t *PurchaseTracker) TrackPurchase(e checkout.PurchaseEvent) {
	t.purchases.WithLabelValues(e.Currency).Inc()
	t.revenue.WithLabelValues(e.Currency).Add(e.ValueMajor)
	for _, p := range e.Products {
		t.products.WithLabelValues(p.Category).Inc()
	}

	t.logger.Info().
		Str("order_id", e.OrderID).
		Float64("value", e.ValueMajor).
		Str("currency", e.Currency).
		Int("product_count", len(e.Products)).
		Fields(map[string]interface{}{"custom": e.CustomParams}).
		Msg("purchase tracked")
}
