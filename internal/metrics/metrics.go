// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compsec",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "compsec",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "compsec",
		Name:      "http_rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	})

	RisksScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compsec",
		Name:      "risks_scored_total",
		Help:      "Risks persisted, by resulting risk level.",
	}, []string{"level"})

	AssessmentsScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compsec",
		Name:      "assessments_scored_total",
		Help:      "Assessment rescoring runs, by resulting risk level (Unscored when there are no results).",
	}, []string{"level"})

	IdentifiersIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compsec",
		Name:      "identifiers_issued_total",
		Help:      "Human-readable identifiers reserved, by series and backend.",
	}, []string{"series", "backend"})

	DashboardLoad = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "compsec",
		Name:      "dashboard_load_seconds",
		Help:      "Time spent loading records for the compliance dashboard.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})
)
