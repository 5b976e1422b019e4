// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daylog_submissions_total",
			Help: "Total number of submission upserts",
		},
		[]string{"role", "outcome"},
	)

	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daylog_decisions_total",
			Help: "Total number of recorded review decisions",
		},
		[]string{"reviewer_role", "verdict"},
	)

	DailyScoreHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "daylog_daily_score",
			Help:    "Distribution of daily score totals",
			Buckets: prometheus.LinearBuckets(0, 10, 10),
		},
		[]string{"role"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
