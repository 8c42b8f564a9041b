package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records sale throughput and the container stock levels the
// depot dashboard watches.
type LedgerMetrics struct {
	salesTotal *prometheus.CounterVec
	saleCents  *prometheus.CounterVec
	fullQty    *prometheus.GaugeVec
	emptyQty   *prometheus.GaugeVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	salesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_recorded_total",
		Help: "Recorded sales by channel and payment method.",
	}, []string{"channel", "payment_method"})
	saleCents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_revenue_cents_total",
		Help: "Revenue in cents by channel and payment method.",
	}, []string{"channel", "payment_method"})
	fullQty := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "container_stock_full",
		Help: "Full returnable units on hand per depot.",
	}, []string{"depot"})
	emptyQty := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "container_stock_empty",
		Help: "Empty returnable units on hand per depot.",
	}, []string{"depot"})
	reg.MustRegister(salesTotal, saleCents, fullQty, emptyQty)
	return &LedgerMetrics{
		salesTotal: salesTotal,
		saleCents:  saleCents,
		fullQty:    fullQty,
		emptyQty:   emptyQty,
	}
}

// ObserveSale counts one recorded sale and its revenue.
func (m *LedgerMetrics) ObserveSale(channel, paymentMethod string, totalCents int64) {
	if m == nil || m.salesTotal == nil {
		return
	}
	channel = normalizeLabel(channel)
	paymentMethod = normalizeLabel(paymentMethod)
	m.salesTotal.WithLabelValues(channel, paymentMethod).Inc()
	m.saleCents.WithLabelValues(channel, paymentMethod).Add(float64(totalCents))
}

// SetContainerStock publishes the current full/empty split for a depot.
func (m *LedgerMetrics) SetContainerStock(depot string, fullQty, emptyQty int) {
	if m == nil || m.fullQty == nil {
		return
	}
	depot = normalizeLabel(depot)
	m.fullQty.WithLabelValues(depot).Set(float64(fullQty))
	m.emptyQty.WithLabelValues(depot).Set(float64(emptyQty))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
