package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Total number of successful registrations",
		},
	)

	RegistrationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_failed_total",
			Help: "Total number of failed registrations by reason",
		},
		[]string{"reason"},
	)

	LoginsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total number of successful logins",
		},
	)

	LoginsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logins_failed_total",
			Help: "Total number of failed logins",
		},
	)

	SessionsEstablished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_established_total",
			Help: "Total number of sessions established",
		},
	)

	SessionsCleared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_cleared_total",
			Help: "Total number of sessions cleared by logout",
		},
	)

	AuthorizationsDenied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authorizations_denied_total",
			Help: "Total number of protected-access checks denied",
		},
	)

	VectorsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vectors_generated_total",
			Help: "Total number of random vectors generated",
		},
	)
)
