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

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docugen_stage_duration_seconds",
			Help:    "Duration of each document pipeline stage",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"stage", "status"},
	)

	PipelineExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docugen_executions_total",
			Help: "Document pipeline executions by template and final status",
		},
		[]string{"template_id", "status"},
	)

	QualityCheckResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docugen_quality_checks_total",
			Help: "Quality check outcomes by check and status",
		},
		[]string{"check_id", "status"},
	)

	DocumentCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docugen_document_cache_lookups_total",
			Help: "Generated document cache lookups by result",
		},
		[]string{"result"},
	)
)
