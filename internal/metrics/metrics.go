package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashwatch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashwatch_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	// Evaluation metrics
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashwatch_evaluations_total",
			Help: "Total number of rule evaluations",
		},
		[]string{"dashboard", "rule"},
	)

	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashwatch_alerts_total",
			Help: "Total number of alerts produced",
		},
		[]string{"dashboard", "rule"},
	)

	RecordsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashwatch_records_skipped_total",
			Help: "Total number of records skipped because their metric was unavailable",
		},
		[]string{"dashboard", "rule"},
	)

	// Refresh metrics
	RefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashwatch_refresh_duration_seconds",
			Help:    "Time taken to refresh a dashboard",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"dashboard"},
	)

	RefreshFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashwatch_refresh_failures_total",
			Help: "Total number of failed dashboard refreshes",
		},
		[]string{"dashboard"},
	)

	// Notification metrics
	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashwatch_notifications_sent_total",
			Help: "Total number of alerts delivered by a sink",
		},
		[]string{"sink"},
	)

	NotificationsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashwatch_notifications_failed_total",
			Help: "Total number of alerts a sink failed to deliver",
		},
		[]string{"sink"},
	)

	ToastQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashwatch_toast_queue_size",
			Help: "Current number of visible toasts",
		},
	)
)
