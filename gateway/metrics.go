package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for payment processing. A nil *Metrics is a no-op.
type Metrics struct {
	// Payment outcomes by status, including Unavailable
	Payments *prometheus.CounterVec

	// Bank call latency by protocol and result (ok, unavailable, error)
	BankLatency *prometheus.HistogramVec

	Lookups *prometheus.CounterVec
}

// NewMetrics registers the payment metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Payments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "paygate_payments_total",
			Help: "Total payment submissions by outcome",
		}, []string{"status"}),

		BankLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paygate_bank_authorization_duration_seconds",
			Help:    "Duration of bank authorization calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"protocol", "result"}),

		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "paygate_payment_lookups_total",
			Help: "Total payment lookups by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementPayment(status string) {
	if m != nil {
		m.Payments.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ObserveBankLatency(protocol, result string, d time.Duration) {
	if m != nil {
		m.BankLatency.WithLabelValues(protocol, result).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementLookup(result string) {
	if m != nil {
		m.Lookups.WithLabelValues(result).Inc()
	}
}
