// Package observability provides Prometheus metrics for the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginsTotal counts login attempts by outcome.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_logins_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})

	// SessionsDestroyedTotal counts explicit logouts.
	SessionsDestroyedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_sessions_destroyed_total",
		Help: "Total number of sessions destroyed via logout",
	})

	// UploadsTotal counts file uploads by outcome (stored or skipped).
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_uploads_total",
		Help: "Total number of file uploads by outcome",
	}, []string{"outcome"})
)
