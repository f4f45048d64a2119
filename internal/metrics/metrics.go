// Package metrics holds the domain counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Submission steps used as the failure label.
const (
	StepInsertOrder = "insert_order"
	StepInsertItems = "insert_items"
	StepDeductStock = "deduct_stock"
)

// Orders counts order submission outcomes. A nil *Orders records nothing.
type Orders struct {
	created    prometheus.Counter
	oversell   prometheus.Counter
	deductions prometheus.Counter
	failures   *prometheus.CounterVec
}

// NewOrders builds and registers the order counters on reg.
func NewOrders(reg prometheus.Registerer) (*Orders, error) {
	m := &Orders{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockflow_orders_created_total",
			Help: "Orders whose header row was written.",
		}),
		oversell: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockflow_oversell_lines_total",
			Help: "Confirmed line items that ordered more than the known stock.",
		}),
		deductions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockflow_stock_deductions_total",
			Help: "SKU quantity write-backs performed after order creation.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockflow_order_submission_failures_total",
			Help: "Order submissions that stopped at a write step.",
		}, []string{"step"}),
	}
	for _, c := range []prometheus.Collector{m.created, m.oversell, m.deductions, m.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Orders) OrderCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

func (m *Orders) OversellLines(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.oversell.Add(float64(n))
}

func (m *Orders) StockDeducted() {
	if m == nil {
		return
	}
	m.deductions.Inc()
}

func (m *Orders) SubmissionFailed(step string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(step).Inc()
}
