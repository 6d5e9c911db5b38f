package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_responses_total",
			Help: "Chat replies by detected intent and response type",
		},
		[]string{"intent", "type"},
	)

	ChatFollowUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_follow_ups_total",
			Help: "Messages resolved against a previous conversation context",
		},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docstore_query_duration_seconds",
			Help:    "Document store query latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "collection"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_errors_total",
			Help: "Document store failures surfaced to callers",
		},
		[]string{"collection", "operation"},
	)

	AnalyticsFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_write_failures_total",
			Help: "Interaction log writes that failed and were dropped",
		},
		[]string{"sink"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notifications delivered by channel and outcome",
		},
		[]string{"channel", "status"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)
)
