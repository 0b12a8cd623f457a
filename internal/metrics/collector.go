// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 运行指标
	runsTotal   *prometheus.CounterVec
	runDuration *prometheus.HistogramVec

	// 专家执行指标
	specialistsTotal   *prometheus.CounterVec
	specialistDuration *prometheus.HistogramVec
	specialistTokens   prometheus.Counter
	specialistCost     prometheus.Counter

	// Job 指标
	jobTransitions *prometheus.CounterVec

	// 记忆存储指标
	memoryErrors *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// HTTP 指标
	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 运行指标
	c.runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of swarm runs",
		},
		[]string{"status"}, // completed, partial, failed
	)

	c.runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "End-to-end swarm run duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"status"},
	)

	// 专家执行指标
	c.specialistsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "specialist_executions_total",
			Help:      "Total number of specialist executions",
		},
		[]string{"status"}, // ok, failed, timed_out
	)

	c.specialistDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "specialist_execution_duration_seconds",
			Help:      "Specialist execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"status"},
	)

	c.specialistTokens = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "specialist_tokens_used_total",
			Help:      "Total number of tokens used by specialists",
		},
	)

	c.specialistCost = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "specialist_cost_total",
			Help:      "Total specialist LLM cost in USD",
		},
	)

	// Job 指标
	c.jobTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_transitions_total",
			Help:      "Total number of job status transitions",
		},
		[]string{"to_status"},
	)

	// 记忆存储指标
	c.memoryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_store_errors_total",
			Help:      "Total number of thread memory store errors",
		},
		[]string{"op"}, // read, append
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// =============================================================================
// 🐝 运行与专家指标记录
// =============================================================================

// RecordRun 记录一次完整运行
func (c *Collector) RecordRun(status string, duration time.Duration) {
	c.runsTotal.WithLabelValues(status).Inc()
	c.runDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordSpecialist 记录单个专家执行
func (c *Collector) RecordSpecialist(status string, duration time.Duration, tokens int, cost float64) {
	c.specialistsTotal.WithLabelValues(status).Inc()
	c.specialistDuration.WithLabelValues(status).Observe(duration.Seconds())
	c.specialistTokens.Add(float64(tokens))
	c.specialistCost.Add(cost)
}

// RecordJobTransition 记录 Job 状态转换
func (c *Collector) RecordJobTransition(toStatus string) {
	c.jobTransitions.WithLabelValues(toStatus).Inc()
}

// RecordMemoryError 记录记忆存储故障
func (c *Collector) RecordMemoryError(op string) {
	c.memoryErrors.WithLabelValues(op).Inc()
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
