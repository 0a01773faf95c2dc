package history

import (
	"github.com/Sternrassler/burst-fetch/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Saves tracks run records written to Redis
	Saves = promauto.With(metrics.Registry).NewCounter(
		prometheus.CounterOpts{
			Name: "burst_history_saves_total",
			Help: "Total number of run records written to Redis",
		},
	)

	// Errors tracks Redis operation errors
	Errors = promauto.With(metrics.Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "burst_history_errors_total",
			Help: "Total number of run history operation errors",
		},
		[]string{"operation"}, // "save", "get", "recent"
	)
)
