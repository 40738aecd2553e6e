package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PgErrCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schooladmin",
		Subsystem: "pg",
		Name:      "pg_err_count",
	}, []string{"method"})
	PgDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "schooladmin",
		Subsystem: "pg",
		Name:      "pg_duration",
	}, []string{"method"})
	FormSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schooladmin",
		Subsystem: "form",
		Name:      "submissions_total",
	}, []string{"mode", "outcome"})
	Announcements = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "schooladmin",
		Subsystem: "worker",
		Name:      "announcements_total",
	})
)
