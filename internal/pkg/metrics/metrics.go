package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "hireloop"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	ApplicationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "application_transitions_total",
		Help:      "Committed application status transitions.",
	}, []string{"from", "to"})

	ApplicationsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_submitted_total",
		Help:      "Applications submitted by candidates.",
	})

	PlacementFees = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "placement_fees_total",
		Help:      "Sum of consultant placement fees booked.",
	})

	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Conversation messages sent.",
	})

	WebsocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_connections",
		Help:      "Currently open websocket connections.",
	})

	SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "side_effect_failures_total",
		Help:      "Best-effort side effects that failed after commit.",
	}, []string{"kind"})
)

// RecordTransition counts one committed application status change
func RecordTransition(from, to string) {
	ApplicationTransitions.WithLabelValues(from, to).Inc()
}

// RecordPlacementFee adds a booked fee
func RecordPlacementFee(fee decimal.Decimal) {
	f, _ := fee.Float64()
	if f > 0 {
		PlacementFees.Add(f)
	}
}

// RecordSideEffectFailure counts a failed notification, email, event or cache call
func RecordSideEffectFailure(kind string) {
	SideEffectFailures.WithLabelValues(kind).Inc()
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
