// Package metrics defines and registers all custom Prometheus metrics of the
// back-office gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry at package init through
// promauto; the HTTP middleware metrics live in echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backoffice"

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestsTotal counts calls made to the upstream REST service.
// Labels:
//   - operation: entity client operation (e.g. "list", "get", "create", "login")
//   - status: HTTP status code, or "network_error" when no response arrived
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of requests sent to the upstream REST service.",
	},
	[]string{"operation", "status"},
)

// UpstreamRequestDuration measures upstream round-trip latency.
// Label:
//   - operation: entity client operation
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of upstream REST calls from request to decoded response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "rejected" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// SessionsOpen tracks logged-in browser sessions held in memory.
var SessionsOpen = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_open",
		Help:      "Number of logged-in browser sessions held by this process.",
	},
)

// SessionSubscribers tracks live current-user subscriptions (websockets).
var SessionSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_subscribers",
		Help:      "Number of active current-user stream subscribers.",
	},
)

// FormRejectionsTotal counts form submissions refused by client-side rules.
// Label:
//   - screen: screen name (e.g. "type-produits")
var FormRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "form_rejections_total",
		Help:      "Total number of form submissions rejected by validation rules.",
	},
	[]string{"screen"},
)
