package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics records business counters for the checkout pipeline.
type OrderMetrics struct {
	placed *prometheus.CounterVec
	failed *prometheus.CounterVec
	value  *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed, by payment mode.",
	}, []string{"payment_mode"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Order placements rejected or failed, by reason.",
	}, []string{"reason"})
	value := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_value_rupees_total",
		Help: "Cumulative order value in rupees, by payment mode.",
	}, []string{"payment_mode"})
	reg.MustRegister(placed, failed, value)
	return &OrderMetrics{
		placed: placed,
		failed: failed,
		value:  value,
	}
}

// IncPlaced increments the placed counter and adds the order total.
func (o *OrderMetrics) IncPlaced(paymentMode string, total int) {
	if o == nil || o.placed == nil {
		return
	}
	mode := normalizeLabel(paymentMode)
	o.placed.WithLabelValues(mode).Inc()
	if total > 0 {
		o.value.WithLabelValues(mode).Add(float64(total))
	}
}

// IncFailed increments the failure counter for the given reason.
func (o *OrderMetrics) IncFailed(reason string) {
	if o == nil || o.failed == nil {
		return
	}
	o.failed.WithLabelValues(normalizeLabel(reason)).Inc()
}
