package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studio_booking",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status.",
		},
		[]string{"method", "path", "status"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "studio_booking",
			Name:      "bookings_created_total",
			Help:      "Successfully persisted bookings.",
		},
	)

	ruleViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studio_booking",
			Name:      "booking_rule_violations_total",
			Help:      "Booking attempts rejected by business rules, by error code.",
		},
		[]string{"code"},
	)

	clampedTotals = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "studio_booking",
			Name:      "clamped_totals_total",
			Help:      "Price calculations whose raw total went negative and was clamped to zero.",
		},
	)

	sideEffectFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studio_booking",
			Name:      "side_effect_failures_total",
			Help:      "Post-commit best-effort step failures, by step.",
		},
		[]string{"step"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			bookingsCreated,
			ruleViolations,
			clampedTotals,
			sideEffectFailures,
		)
	})
}

func IncHTTP(method, path, status string) {
	httpRequests.WithLabelValues(method, path, status).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncRuleViolation(code string) {
	ruleViolations.WithLabelValues(code).Inc()
}

// IncClampedTotal fires when a discount stack exceeded the gross price. A
// rising rate usually means a misconfigured service discount.
func IncClampedTotal() {
	clampedTotals.Inc()
}

func IncSideEffectFailure(step string) {
	sideEffectFailures.WithLabelValues(step).Inc()
}
