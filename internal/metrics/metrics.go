package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RPCTotal    *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec

	TransitionsTotal *prometheus.CounterVec
	BookingsTotal    *prometheus.CounterVec
	DispatchFailures *prometheus.CounterVec
	RemindersSent    prometheus.Counter
	MailBreakerState *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// NewCollector registers the clinic metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() so collectors never clash.
func NewCollector(namespace string, reg *prometheus.Registry) *Collector {
	f := promauto.With(reg)
	return &Collector{
		RPCTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "RPCs handled by method and status code.",
		}, []string{"method", "code"}),

		RPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "RPC latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"method"}),

		TransitionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Appointment update attempts by source status, target status and result.",
		}, []string{"from", "to", "result"}),

		BookingsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Appointments booked by source (doctor or self-service).",
		}, []string{"source"}),

		DispatchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "failures_total",
			Help:      "Failed side-effect instructions by kind and whether they stopped the operation.",
		}, []string{"kind", "fatal"}),

		RemindersSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "sent_total",
			Help:      "Appointment reminders dispatched by the sweeper.",
		}),

		MailBreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mail",
			Name:      "breaker_state",
			Help:      "Mail circuit breaker state (0 closed, 1 half-open, 2 open).",
		}, []string{"name"}),

		gatherer: reg,
	}
}

// Handler serves the registry the collector was built on.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
