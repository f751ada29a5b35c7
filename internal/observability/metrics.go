package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "app_sicap_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_sicap_active_connections",
			Help: "Number of active connections",
		},
	)

	// PipelineRuns counts pipeline executions by outcome kind
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_sicap_pipeline_runs_total",
			Help: "Number of payroll pipeline runs",
		},
		[]string{"outcome"},
	)

	// PipelineDuration tracks how long a run takes end to end
	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "app_sicap_pipeline_duration_seconds",
			Help:    "Duration of payroll pipeline runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 180},
		},
		[]string{"outcome"},
	)

	// PipelineStages counts each pipeline stage by status
	PipelineStages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_sicap_pipeline_stage_total",
			Help: "Number of pipeline stage executions",
		},
		[]string{"stage", "status"},
	)

	// PipelineStageDuration tracks the time spent in each pipeline stage
	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "app_sicap_pipeline_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"stage"},
	)

	// ProvidersSubmitted counts provider records accepted by SICAP
	ProvidersSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "app_sicap_providers_submitted_total",
			Help: "Number of provider records submitted to SICAP",
		},
	)

	// SICAPRequests counts calls to the SICAP API
	SICAPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_sicap_external_requests_total",
			Help: "Number of requests sent to the SICAP API",
		},
		[]string{"endpoint", "status"},
	)

	// SICAPRequestDuration tracks SICAP API latency
	SICAPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "app_sicap_external_request_duration_seconds",
			Help:    "Duration of SICAP API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)
