// Package metrics 基于Prometheus的指标收集
//
// 指标分四组：
//   - HTTP请求：总数、耗时、处理中的请求数（由middleware.Metrics采集）
//   - 图书目录操作：按operation/result统计次数和耗时（由application层采集）
//   - 熔断器：状态与请求结果（由事件发布器采集）
//   - 消息队列：发布、消费次数与消费耗时
//
// 使用示例:
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	start := time.Now()
//	added, err := svc.AddBook(ctx, params)
//	metrics.ObserveOperation("add_book", start, err)
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds），
// 标签只使用有限取值的维度（operation、result、status），不要用ISBN、作者名做标签。
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// 操作结果标签取值
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultNotFound = "not_found"
	ResultRejected = "rejected"
)

var (
	initOnce sync.Once

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板，如/api/v1/books/:isbn）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// CatalogOperationsTotal 图书目录操作总数
	// 标签：operation（add_book、remove_author…）、result（success/failure/not_found）
	CatalogOperationsTotal *prometheus.CounterVec

	// CatalogOperationDuration 图书目录操作耗时
	CatalogOperationDuration *prometheus.HistogramVec

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	// 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// MessagesPublishedTotal 消息发布总数
	// 标签：exchange、routing_key、result
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数
	// 标签：queue、result
	MessagesConsumedTotal *prometheus.CounterVec

	// MessageProcessingDuration 消息处理耗时
	MessageProcessingDuration prometheus.Histogram
)

// InitMetrics 注册所有指标到默认Registry
// 可以重复调用，只有第一次生效
func InitMetrics() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP请求耗时（秒）",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"method", "path"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_progress",
				Help: "正在处理的HTTP请求数",
			},
		)

		CatalogOperationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_operations_total",
				Help: "图书目录操作总数",
			},
			[]string{"operation", "result"},
		)

		CatalogOperationDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "catalog_operation_duration_seconds",
				Help: "图书目录操作耗时（秒）",
				// 单库事务，通常在几毫秒到几百毫秒之间
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"operation"},
		)

		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
			},
			[]string{"name"},
		)

		CircuitBreakerRequests = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circuit_breaker_requests_total",
				Help: "熔断器请求总数",
			},
			[]string{"name", "result"},
		)

		MessagesPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_published_total",
				Help: "消息发布总数",
			},
			[]string{"exchange", "routing_key", "result"},
		)

		MessagesConsumedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_consumed_total",
				Help: "消息消费总数",
			},
			[]string{"queue", "result"},
		)

		MessageProcessingDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "message_processing_duration_seconds",
				Help:    "消息处理耗时（秒）",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
			},
		)
	})
}

// ObserveOperation 记录一次图书目录操作
// err为nil记success；NotFound类错误记not_found；其余记failure
func ObserveOperation(operation string, start time.Time, err error) {
	InitMetrics()

	result := ResultSuccess
	switch {
	case err == nil:
	case apperrors.IsNotFound(err):
		result = ResultNotFound
	default:
		result = ResultFailure
	}

	CatalogOperationsTotal.WithLabelValues(operation, result).Inc()
	CatalogOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// IncCounterVec 递增带标签的Counter
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// SetGaugeVec 设置带标签的Gauge
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}
