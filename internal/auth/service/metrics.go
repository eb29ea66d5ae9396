package service

import "github.com/vector-portal/backend/internal/observability/metrics"

func incrementRegistrations() {
	metrics.RegistrationsTotal.Inc()
}

func incrementRegistrationsFailed(reason string) {
	metrics.RegistrationsFailed.WithLabelValues(reason).Inc()
}

func incrementLogins() {
	metrics.LoginsTotal.Inc()
}

func incrementLoginsFailed() {
	metrics.LoginsFailed.Inc()
}
