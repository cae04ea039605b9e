package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for storefront activity.
// All recording methods are safe on a nil receiver so services work without
// metrics in tests.
type BusinessMetrics struct {
	// Cart
	CartItemsAdded *prometheus.CounterVec
	CartCleared    prometheus.Counter

	// Checkout and orders
	CheckoutAttempts   *prometheus.CounterVec
	OrdersPlaced       prometheus.Counter
	OrderValue         prometheus.Histogram
	OrderItemCount     prometheus.Histogram
	OrderFailures      *prometheus.CounterVec
	OrderTransitions   *prometheus.CounterVec
	OrdersUnreconciled prometheus.Counter

	// Inventory
	InventoryAdjustments *prometheus.CounterVec
	InventoryDepleted    prometheus.Counter

	// Connectivity
	Online         prometheus.Gauge
	OfflineBlocked *prometheus.CounterVec
	FallbackServed *prometheus.CounterVec

	// Events
	EventsPublished *prometheus.CounterVec
}

// NewBusinessMetrics registers the metrics with the default registry.
// Call it once per process.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "pantry"
	}

	subsystem := "business"

	m := &BusinessMetrics{
		// =======================================================================
		// Cart
		// =======================================================================
		CartItemsAdded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Total add to cart actions",
			},
			[]string{"product_id"},
		),
		CartCleared: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_cleared_total",
				Help:      "Total carts emptied",
			},
		),

		// =======================================================================
		// Checkout and orders
		// =======================================================================
		CheckoutAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_attempts_total",
				Help:      "Checkout attempts by final state",
			},
			[]string{"state"}, // succeeded, rejected
		),
		OrdersPlaced: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_placed_total",
				Help:      "Total orders placed successfully",
			},
		),
		OrderValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value",
				Help:      "Order total in currency units",
				Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),
		OrderItemCount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_item_count",
				Help:      "Number of units per order",
				Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
			},
		),
		OrderFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_failures_total",
				Help:      "Order placement failures by error code",
			},
			[]string{"code"},
		),
		OrderTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_status_transitions_total",
				Help:      "Admin order status changes",
			},
			[]string{"from", "to"},
		),
		OrdersUnreconciled: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_unreconciled_total",
				Help:      "Orders left pending after inventory adjustment and compensation both failed",
			},
		),

		// =======================================================================
		// Inventory
		// =======================================================================
		InventoryAdjustments: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "inventory_adjustments_total",
				Help:      "Post-order inventory adjustments by result",
			},
			[]string{"result"}, // ok, not_found, conflict, error
		),
		InventoryDepleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "inventory_depleted_total",
				Help:      "Products whose stock reached zero",
			},
		),

		// =======================================================================
		// Connectivity
		// =======================================================================
		Online: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "online",
				Help:      "1 when the backend is reachable, 0 otherwise",
			},
		),
		OfflineBlocked: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "offline_blocked_total",
				Help:      "Mutating operations refused while offline",
			},
			[]string{"op"},
		),
		FallbackServed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fallback_served_total",
				Help:      "Reads answered from last-known data after a network failure",
			},
			[]string{"resource"},
		),

		// =======================================================================
		// Events
		// =======================================================================
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_published_total",
				Help:      "Domain events published by subject and result",
			},
			[]string{"subject", "result"},
		),
	}

	return m
}

// Global instance for easy access from services and handlers
var Business *BusinessMetrics

// InitBusinessMetrics initializes the global business metrics instance
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace)
	return Business
}

func (m *BusinessMetrics) CartItemAdded(productID string, quantity int) {
	if m == nil {
		return
	}
	m.CartItemsAdded.WithLabelValues(productID).Add(float64(quantity))
}

func (m *BusinessMetrics) CartEmptied() {
	if m == nil {
		return
	}
	m.CartCleared.Inc()
}

func (m *BusinessMetrics) CheckoutFinished(state string) {
	if m == nil {
		return
	}
	m.CheckoutAttempts.WithLabelValues(state).Inc()
}

func (m *BusinessMetrics) OrderPlaced(total float64, units int) {
	if m == nil {
		return
	}
	m.OrdersPlaced.Inc()
	m.OrderValue.Observe(total)
	m.OrderItemCount.Observe(float64(units))
}

func (m *BusinessMetrics) OrderFailed(code string) {
	if m == nil {
		return
	}
	m.OrderFailures.WithLabelValues(code).Inc()
}

func (m *BusinessMetrics) OrderTransitioned(from, to string) {
	if m == nil {
		return
	}
	m.OrderTransitions.WithLabelValues(from, to).Inc()
}

func (m *BusinessMetrics) OrderUnreconciled() {
	if m == nil {
		return
	}
	m.OrdersUnreconciled.Inc()
}

func (m *BusinessMetrics) InventoryAdjusted(result string) {
	if m == nil {
		return
	}
	m.InventoryAdjustments.WithLabelValues(result).Inc()
}

func (m *BusinessMetrics) StockDepleted() {
	if m == nil {
		return
	}
	m.InventoryDepleted.Inc()
}

func (m *BusinessMetrics) SetOnline(online bool) {
	if m == nil {
		return
	}
	if online {
		m.Online.Set(1)
		return
	}
	m.Online.Set(0)
}

func (m *BusinessMetrics) Blocked(op string) {
	if m == nil {
		return
	}
	m.OfflineBlocked.WithLabelValues(op).Inc()
}

func (m *BusinessMetrics) Fallback(resource string) {
	if m == nil {
		return
	}
	m.FallbackServed.WithLabelValues(resource).Inc()
}

func (m *BusinessMetrics) EventPublished(subject string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(subject, result).Inc()
}
