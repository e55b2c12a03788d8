// internal/common/metrics/metrics.go
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
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
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

	// RecommendationScores is the distribution of scores returned to processes.
	RecommendationScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atio_recommendation_score",
			Help:    "Scores of technologies returned by the ranking workers",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"task_type"},
	)

	// CatalogCacheLookups counts snapshot reads by result: hit, miss or error.
	CatalogCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atio_catalog_cache_lookups_total",
			Help: "Catalog snapshot cache lookups by result",
		},
		[]string{"result"},
	)

	// SearchBreakerState is 0 closed, 1 half-open, 2 open.
	SearchBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "atio_search_breaker_state",
			Help: "Circuit breaker state guarding Elasticsearch",
		},
		[]string{"breaker"},
	)

	DataQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atio_data_query_duration_seconds",
			Help:    "Duration of data-access queries by backend and query type",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "query_type"},
	)
)
