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
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	IntentClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_intent_classifications_total",
			Help: "Resolved intents by label and the classifier that produced them",
		},
		[]string{"intent", "source"},
	)

	QueriesRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_queries_routed_total",
			Help: "Answered queries by response mode",
		},
		[]string{"mode", "intent"},
	)

	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_tool_calls_total",
			Help: "Tool invocations dispatched to the tool server",
		},
		[]string{"tool", "status"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hr_llm_request_duration_seconds",
			Help:    "Latency of language model calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation", "status"},
	)

	EmbeddingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_embedding_cache_lookups_total",
			Help: "Embedding cache hits and misses",
		},
		[]string{"result"},
	)
)
