// internal/common/metrics/metrics.go
package metrics

import (
	"strconv"

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

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workforce_analyses_total",
			Help: "Analyses by verdict (reliable, RELIABILITY_REJECTED, RECORD_CONSTRUCTION_FAILED) and entry point",
		},
		[]string{"verdict", "source"},
	)

	AnalysisOverallScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "workforce_analysis_overall_score",
			Help:    "Distribution of overall reliability scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	AnalysisCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workforce_analysis_cache_total",
			Help: "Result cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served by the intake API",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request latency",
		},
		[]string{"method", "route"},
	)
)

// RecordAnalysis counts one verdict and observes its score.
func RecordAnalysis(verdict, source string, overallScore int) {
	AnalysesTotal.WithLabelValues(verdict, source).Inc()
	AnalysisOverallScore.Observe(float64(overallScore))
}

// RecordHTTPRequest counts one served request.
func RecordHTTPRequest(method, route string, status int, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}
