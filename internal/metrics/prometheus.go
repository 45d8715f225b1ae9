package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Routing metrics
	RouteDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buffai_route_decisions_total",
			Help: "Agents selected by the router",
		},
		[]string{"agent"},
	)

	RouteFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "buffai_route_fallbacks_total",
			Help: "Requests answered by direct chat because no agent was selected",
		},
	)

	// Specialist agent metrics
	AgentCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buffai_agent_calls_total",
			Help: "Total number of specialist agent calls",
		},
		[]string{"agent", "status"}, // status: success|error
	)

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buffai_agent_latency_seconds",
			Help:    "Specialist agent latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"agent"},
	)

	// LLM provider metrics
	LLMCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buffai_llm_calls_total",
			Help: "Total number of LLM provider calls",
		},
		[]string{"provider", "mode", "status"}, // mode: chat|json|stream|tools
	)

	LLMLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buffai_llm_latency_seconds",
			Help:    "LLM provider latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 60},
		},
		[]string{"provider", "mode"},
	)

	LLMTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buffai_llm_tokens_total",
			Help: "Tokens consumed by LLM calls",
		},
		[]string{"provider", "type"}, // type: input|output
	)

	// Tool metrics
	ToolExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buffai_tool_executions_total",
			Help: "Total number of tool executions",
		},
		[]string{"tool", "status"},
	)

	ToolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buffai_tool_latency_seconds",
			Help:    "Tool execution latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"tool"},
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buffai_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"route", "method", "status"},
	)

	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buffai_http_latency_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buffai_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"},
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buffai_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "buffai_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Post ingestion metrics
	PostsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buffai_posts_ingested_total",
			Help: "Scraped posts by ingestion outcome",
		},
		[]string{"status"}, // saved|irrelevant|duplicate|failed
	)
)

var registerOnce sync.Once

// Init registers all metrics with the default registry. Safe to call twice.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RouteDecisions,
			RouteFallbacks,
			AgentCalls,
			AgentLatency,
			LLMCalls,
			LLMLatency,
			LLMTokens,
			ToolExecutions,
			ToolLatency,
			HTTPRequests,
			HTTPLatency,
			WorkerExecutions,
			WorkerDuration,
			WorkerLastRun,
			PostsIngested,
		)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordAgentCall records one specialist invocation
func RecordAgentCall(agent string, latency time.Duration, err error) {
	AgentCalls.WithLabelValues(agent, status(err)).Inc()
	AgentLatency.WithLabelValues(agent).Observe(latency.Seconds())
}

// RecordLLMCall records one provider call and its token usage
func RecordLLMCall(provider, mode string, latency time.Duration, inputTokens, outputTokens int, err error) {
	LLMCalls.WithLabelValues(provider, mode, status(err)).Inc()
	LLMLatency.WithLabelValues(provider, mode).Observe(latency.Seconds())

	if inputTokens > 0 {
		LLMTokens.WithLabelValues(provider, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		LLMTokens.WithLabelValues(provider, "output").Add(float64(outputTokens))
	}
}

// RecordToolExecution records a tool execution
func RecordToolExecution(tool string, latency time.Duration, err error) {
	ToolExecutions.WithLabelValues(tool, status(err)).Inc()
	ToolLatency.WithLabelValues(tool).Observe(latency.Seconds())
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	WorkerExecutions.WithLabelValues(worker, status(err)).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}
