// Package metrics Prometheus指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cme"

var (
	// Registry 应用指标注册表
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	ordersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "created_total",
			Help:      "Total number of orders created.",
		},
		[]string{"product_type"},
	)

	orderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "transitions_total",
			Help:      "Order status transitions.",
		},
		[]string{"status"},
	)

	orderNoRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "order_no_retries_total",
			Help:      "Order number collisions that triggered a retry.",
		},
	)

	checkIns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "points",
			Name:      "check_ins_total",
			Help:      "Total number of daily check-ins.",
		},
	)

	pointsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "points",
			Name:      "awarded_total",
			Help:      "Points awarded, by type.",
		},
		[]string{"type"},
	)

	pointsConsumed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "points",
			Name:      "consumed_total",
			Help:      "Points consumed by exchanges.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		ordersCreated,
		orderTransitions,
		orderNoRetries,
		checkIns,
		pointsAwarded,
		pointsConsumed,
	)
}

// Handler 暴露 /metrics
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware 记录请求数与耗时，路径取路由模板避免高基数
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordOrderCreated 订单创建
func RecordOrderCreated(productType string) {
	ordersCreated.WithLabelValues(productType).Inc()
}

// RecordOrderTransition 订单状态变更
func RecordOrderTransition(status string) {
	orderTransitions.WithLabelValues(status).Inc()
}

// RecordOrderNoRetry 订单号冲突重试
func RecordOrderNoRetry() {
	orderNoRetries.Inc()
}

// RecordCheckIn 签到
func RecordCheckIn() {
	checkIns.Inc()
}

// RecordPointsAwarded 发放积分
func RecordPointsAwarded(pointsType string, points int) {
	if points > 0 {
		pointsAwarded.WithLabelValues(pointsType).Add(float64(points))
	}
}

// RecordPointsConsumed 消耗积分
func RecordPointsConsumed(points int) {
	if points > 0 {
		pointsConsumed.Add(float64(points))
	}
}
