package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttemptsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "login_attempts_total",
			Help:      "Total login attempts by outcome.",
		},
		[]string{"result"}, // success, invalid_credentials, locked, disabled, missing_credentials, error
	)

	loginDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "auth",
			Name:      "login_duration_seconds",
			Help:      "Duration of login processing including the password hash comparison.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	tokenRefreshCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "token_refreshes_total",
			Help:      "Total token refresh attempts by outcome.",
		},
		[]string{"result"}, // success, denied, error
	)
)
