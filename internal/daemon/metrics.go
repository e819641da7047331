package daemon

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics are registered on a per-service registry so several services
// can coexist in one process.
type metrics struct {
	reg         *prometheus.Registry
	budgets     prometheus.Gauge
	grandTotal  prometheus.Gauge
	polls       *prometheus.CounterVec
	imported    prometheus.Counter
	failed      prometheus.Counter
	subscribers prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		reg: prometheus.NewRegistry(),
		budgets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orca", Name: "budgets",
			Help: "Budgets currently stored.",
		}),
		grandTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orca", Name: "portfolio_grand_total",
			Help: "Sum of grand totals across stored budgets.",
		}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orca", Name: "polls_total",
			Help: "Directory polls by result.",
		}, []string{"result"}),
		imported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orca", Name: "documents_imported_total",
			Help: "Documents re-read because they changed on disk.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orca", Name: "documents_failed_total",
			Help: "Documents that could not be read or decoded.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orca", Name: "stream_subscribers",
			Help: "Open SSE subscriptions.",
		}),
	}
	m.reg.MustRegister(m.budgets, m.grandTotal, m.polls, m.imported, m.failed, m.subscribers)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
