package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the booking counters. Methods on a nil Recorder are no-ops.
type Recorder struct {
	registry *prometheus.Registry

	bookingsCreated   *prometheus.CounterVec
	conflicts         prometheus.Counter
	transitions       *prometheus.CounterVec
	holdsExpired      prometheus.Counter
	paymentsConfirmed *prometheus.CounterVec
	reconcileDuration prometheus.Histogram
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "created_total",
			Help:      "Bookings created, by payment method.",
		}, []string{"method"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "conflicts_total",
			Help:      "Create or reschedule attempts rejected by an overlapping booking.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "transitions_total",
			Help:      "Applied lifecycle transitions, by operation.",
		}, []string{"operation"}),
		holdsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "holds_expired_total",
			Help:      "Pending holds cancelled by the reconciler.",
		}),
		paymentsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "payment_events_total",
			Help:      "Payment webhook events, by outcome.",
		}, []string{"outcome"}),
		reconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "booking",
			Name:      "reconcile_sweep_seconds",
			Help:      "Duration of hold-expiry sweeps.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	r.registry.MustRegister(
		r.bookingsCreated,
		r.conflicts,
		r.transitions,
		r.holdsExpired,
		r.paymentsConfirmed,
		r.reconcileDuration,
		collectors.NewGoCollector(),
	)
	return r
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) BookingCreated(method string) {
	if r == nil {
		return
	}
	r.bookingsCreated.WithLabelValues(method).Inc()
}

func (r *Recorder) Conflict() {
	if r == nil {
		return
	}
	r.conflicts.Inc()
}

func (r *Recorder) Transition(operation string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(operation).Inc()
}

func (r *Recorder) HoldsExpired(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.holdsExpired.Add(float64(n))
}

// PaymentEvent records a webhook outcome: applied, duplicate, ignored or refund_required.
func (r *Recorder) PaymentEvent(outcome string) {
	if r == nil {
		return
	}
	r.paymentsConfirmed.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveSweep(seconds float64) {
	if r == nil {
		return
	}
	r.reconcileDuration.Observe(seconds)
}
