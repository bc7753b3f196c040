// Package metrics exposes Prometheus collectors for HTTP traffic and the purchase flow.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/gamestore/internal/middleware"
	"github.com/mcoot/gamestore/internal/services/purchase"
)

const namespace = "gamestore"

// Metrics owns a registry and the collectors registered on it.
// Each instance is independent so tests can build their own.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	ordersCreated     prometheus.Counter
	paymentsCompleted prometheus.Counter
	revenue           prometheus.Counter
	paymentsRejected  *prometheus.CounterVec
}

// New creates a Metrics with its own registry, including the Go and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		}, []string{"method", "path"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purchase",
			Name:      "orders_created_total",
			Help:      "Total number of orders created.",
		}),
		paymentsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purchase",
			Name:      "payments_completed_total",
			Help:      "Total number of orders marked paid.",
		}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purchase",
			Name:      "revenue_total",
			Help:      "Sum of the prices of paid orders.",
		}),
		paymentsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purchase",
			Name:      "payments_rejected_total",
			Help:      "Total number of rejected payment callbacks.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.ordersCreated,
		m.paymentsCompleted,
		m.revenue,
		m.paymentsRejected,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

var _ purchase.Observer = (*Metrics)(nil)

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the registered metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OrderCreated implements purchase.Observer
func (m *Metrics) OrderCreated() {
	m.ordersCreated.Inc()
}

// PaymentCompleted implements purchase.Observer
func (m *Metrics) PaymentCompleted(amount float64) {
	m.paymentsCompleted.Inc()
	if amount > 0 {
		m.revenue.Add(amount)
	}
}

// PaymentRejected implements purchase.Observer
func (m *Metrics) PaymentRejected(reason string) {
	m.paymentsRejected.WithLabelValues(reason).Inc()
}

// InstrumentHandler wraps next with request counting and timing.
// Requests for the metrics endpoint itself are not recorded.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := middleware.NewResponseWriter(w)
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := middleware.RouteTemplate(r)
		method := strings.ToUpper(r.Method)
		m.httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.Status())).Inc()
		m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}
