package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_pipeline_runs_total",
			Help: "Notification pipeline runs by outcome",
		},
		[]string{"status"},
	)

	QualifyingLocations = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notify_qualifying_locations",
			Help: "Locations that qualified in the most recent run",
		},
		[]string{"region"},
	)

	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_messages_sent_total",
			Help: "SMS messages accepted by the gateway",
		},
		[]string{"provider"},
	)

	SubscriptionsRetired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_subscriptions_retired_total",
			Help: "Pending subscriptions deleted after a successful send",
		},
	)

	IntakeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_requests_total",
			Help: "Subscription intake requests by outcome",
		},
		[]string{"status"},
	)
)
