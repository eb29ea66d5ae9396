package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PortalRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_requests_total",
			Help: "Total number of portal requests",
		},
		[]string{"method", "path"},
	)

	PortalRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_requests_in_flight",
			Help: "Number of portal requests currently being processed",
		},
	)

	PortalRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_request_duration_seconds",
			Help:    "Duration of portal requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
